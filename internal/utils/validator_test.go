// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type credentials struct {
	Password string `validate:"strong_password"`
	Wallet   string `validate:"wallet_address"`
}

func TestStrongPasswordValidation(t *testing.T) {
	valid := []string{"Password1", "aB3defgh", "Long3rPassword"}
	invalid := []string{"short1A", "alllowercase1", "ALLUPPERCASE1", "NoNumbersHere"}

	for _, password := range valid {
		err := ValidateStruct(&credentials{
			Password: password,
			Wallet:   "4Nd1mYvHrTf7QzSkzsRqXCydiSGyGnDoGDGzEKbuwJTh",
		})
		assert.NoError(t, err, "password %q", password)
	}

	for _, password := range invalid {
		err := ValidateStruct(&credentials{
			Password: password,
			Wallet:   "4Nd1mYvHrTf7QzSkzsRqXCydiSGyGnDoGDGzEKbuwJTh",
		})
		assert.Error(t, err, "password %q", password)
	}
}

func TestWalletAddressValidation(t *testing.T) {
	invalid := []string{
		"",
		"too-short",
		"0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl", // excluded base58 characters
		"4Nd1mYvHrTf7QzSkzsRqXCydiSGyGnDoGDGzEKbuwJThExtraCharsMakeItTooLong",
	}

	err := ValidateStruct(&credentials{
		Password: "Password1",
		Wallet:   "4Nd1mYvHrTf7QzSkzsRqXCydiSGyGnDoGDGzEKbuwJTh",
	})
	assert.NoError(t, err)

	for _, wallet := range invalid {
		err := ValidateStruct(&credentials{Password: "Password1", Wallet: wallet})
		assert.Error(t, err, "wallet %q", wallet)
	}
}
