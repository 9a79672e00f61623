package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nucleus/internal/action"
	"github.com/roach88/nucleus/internal/ir"
)

func TestReturnValidationPackage_FirstWins(t *testing.T) {
	header := ir.ChainHeader{EntryType: "post", EntryAddress: "E", Seq: 1}
	s := apply(t, New("alice"),
		action.ReturnValidationPackage{RequestID: "r1", Package: ir.OnlyHeader(header)},
		action.ReturnValidationPackage{RequestID: "r1", Err: ir.ErrorGeneric("late")},
	)

	result := s.Nucleus().ValidationPackageResult("r1")
	require.NotNil(t, result)
	pkg, err := result.Unwrap()
	require.NoError(t, err)
	assert.Equal(t, header, *pkg.ChainHeader)
}

func TestReturnValidationPackage_Error(t *testing.T) {
	s := apply(t, New("alice"), action.ReturnValidationPackage{RequestID: "r1", Err: ir.ValidationFailed("Unknown entry type: 'x'")})

	_, err := s.Nucleus().ValidationPackageResult("r1").Unwrap()
	assert.True(t, ir.IsValidationFailed(err))
	assert.Nil(t, s.Nucleus().ValidationPackageResult("r2"))
}

func TestReturnValidationResult(t *testing.T) {
	s := apply(t, New("alice"),
		action.ReturnValidationResult{RequestID: "ok"},
		action.ReturnValidationResult{RequestID: "bad", Err: ir.ValidationFailed("too long")},
	)

	_, err := s.Nucleus().ValidationResult("ok").Unwrap()
	assert.NoError(t, err)
	_, err = s.Nucleus().ValidationResult("bad").Unwrap()
	assert.Equal(t, ir.ValidationFailed("too long"), err)
}

func TestForgetValidation(t *testing.T) {
	s := apply(t, New("alice"),
		action.ReturnValidationPackage{RequestID: "r1", Package: ir.OnlyHeader(ir.ChainHeader{EntryType: "post", Seq: 1})},
		action.ReturnValidationResult{RequestID: "r1"},
		action.ReturnValidationResult{RequestID: "r2"},
	)

	before := s
	s = apply(t, s, action.ForgetValidation{RequestID: "r1"})
	assert.Nil(t, s.Nucleus().ValidationPackageResult("r1"))
	assert.Nil(t, s.Nucleus().ValidationResult("r1"))
	assert.NotNil(t, s.Nucleus().ValidationResult("r2"))
	assert.NotNil(t, before.Nucleus().ValidationPackageResult("r1"), "earlier snapshot untouched")

	again := apply(t, s, action.ForgetValidation{RequestID: "r1"})
	assert.Same(t, s.Nucleus(), again.Nucleus())
}

func TestInitDNA(t *testing.T) {
	s := apply(t, New("alice"), action.InitDNA{Address: "dna"})
	assert.Equal(t, ir.Address("dna"), s.Nucleus().DnaAddress())
}
