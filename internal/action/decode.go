package action

import (
	"encoding/json"
	"fmt"
)

// Decode parses a payload produced by Wrapper.Payload back into the
// variant named by kind.
func Decode(kind Kind, payload []byte) (Action, error) {
	switch kind {
	case KindInitNetwork:
		return decodeAs[InitNetwork](payload)
	case KindGetEntry:
		return decodeAs[GetEntry](payload)
	case KindGetEntryTimeout:
		return decodeAs[GetEntryTimeout](payload)
	case KindHandleGetResult:
		return decodeAs[HandleGetResult](payload)
	case KindGetValidationPackage:
		return decodeAs[GetValidationPackage](payload)
	case KindGetValidationPackageTimeout:
		return decodeAs[GetValidationPackageTimeout](payload)
	case KindHandleGetValidationPackage:
		return decodeAs[HandleGetValidationPackage](payload)
	case KindInitDNA:
		return decodeAs[InitDNA](payload)
	case KindReturnValidationPackage:
		return decodeAs[ReturnValidationPackage](payload)
	case KindReturnValidationResult:
		return decodeAs[ReturnValidationResult](payload)
	case KindCommit:
		return decodeAs[Commit](payload)
	case KindHoldEntry:
		return decodeAs[HoldEntry](payload)
	case KindAddLink:
		return decodeAs[AddLink](payload)
	case KindForgetValidation:
		return decodeAs[ForgetValidation](payload)
	default:
		return nil, fmt.Errorf("unknown action kind %q", kind)
	}
}

func decodeAs[T Action](payload []byte) (Action, error) {
	var a T
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, fmt.Errorf("decode %s: %w", a.Kind(), err)
	}
	return a, nil
}
