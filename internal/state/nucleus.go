package state

import (
	"github.com/roach88/nucleus/internal/action"
	"github.com/roach88/nucleus/internal/ir"
)

// NucleusState tracks the running DNA and the results of local validation
// requests, keyed by request id. Absent means pending, or forgotten after
// the requester took the result.
type NucleusState struct {
	dnaAddress         ir.Address
	validationPackages map[string]*Result[ir.ValidationPackage]
	validationResults  map[string]*Result[struct{}]
}

func newNucleusState() *NucleusState {
	return &NucleusState{
		validationPackages: map[string]*Result[ir.ValidationPackage]{},
		validationResults:  map[string]*Result[struct{}]{},
	}
}

// DnaAddress returns the address recorded by InitDNA, or "" before that.
func (n *NucleusState) DnaAddress() ir.Address { return n.dnaAddress }

// ValidationPackageResult returns the built package for requestID, or nil
// if the build has not finished.
func (n *NucleusState) ValidationPackageResult(requestID string) *Result[ir.ValidationPackage] {
	return n.validationPackages[requestID]
}

// ValidationResult returns the validation verdict for requestID, or nil if
// validation has not finished.
func (n *NucleusState) ValidationResult(requestID string) *Result[struct{}] {
	return n.validationResults[requestID]
}

func reduceNucleus(n *NucleusState, a action.Action) *NucleusState {
	switch a := a.(type) {
	case action.InitDNA:
		next := *n
		next.dnaAddress = a.Address
		return &next

	case action.ReturnValidationPackage:
		if _, ok := n.validationPackages[a.RequestID]; ok {
			return n
		}
		result := Ok(a.Package)
		if a.Err != nil {
			result = Fail[ir.ValidationPackage](a.Err)
		}
		next := *n
		next.validationPackages = copyWith(n.validationPackages, a.RequestID, result)
		return &next

	case action.ReturnValidationResult:
		if _, ok := n.validationResults[a.RequestID]; ok {
			return n
		}
		result := Ok(struct{}{})
		if a.Err != nil {
			result = Fail[struct{}](a.Err)
		}
		next := *n
		next.validationResults = copyWith(n.validationResults, a.RequestID, result)
		return &next

	case action.ForgetValidation:
		_, hasPackage := n.validationPackages[a.RequestID]
		_, hasResult := n.validationResults[a.RequestID]
		if !hasPackage && !hasResult {
			return n
		}
		next := *n
		if hasPackage {
			next.validationPackages = copyWithout(n.validationPackages, a.RequestID)
		}
		if hasResult {
			next.validationResults = copyWithout(n.validationResults, a.RequestID)
		}
		return &next
	}
	return n
}
