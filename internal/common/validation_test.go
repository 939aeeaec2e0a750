package common

import (
	"errors"
	"testing"

	validator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func TestValidationDetailsUsesLowerCamelKeys(t *testing.T) {
	type payload struct {
		ProductID string `validate:"required"`
		Quantity  int64  `validate:"required,gt=0"`
	}

	err := validator.New().Struct(payload{})
	require.Error(t, err)

	details := ValidationDetails(err)
	require.Equal(t, "required", details["productID"])
	require.Equal(t, "required", details["quantity"])
}

func TestValidationDetailsIgnoresNonValidatorErrors(t *testing.T) {
	details := ValidationDetails(errors.New("boom"))
	require.Empty(t, details)
}

func TestLowerCamelGuardsEmptyName(t *testing.T) {
	require.Equal(t, "", lowerCamel(""))
	require.Equal(t, "productID", lowerCamel("ProductID"))
	require.Equal(t, "q", lowerCamel("Q"))
}
