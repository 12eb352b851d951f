package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidFullName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{name: "plain", input: "Ana Perez", valid: true},
		{name: "accented", input: "Ana Pérez", valid: true},
		{name: "enye", input: "Íñigo Muñoz", valid: true},
		{name: "single letter", input: "A", valid: true},
		{name: "digits", input: "Ana 2", valid: false},
		{name: "punctuation", input: "O'Brien", valid: false},
		{name: "hyphen", input: "Jean-Luc", valid: false},
		{name: "cyrillic", input: "Анна", valid: false},
		{name: "empty", input: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidFullName(tt.input))
		})
	}
}

func TestIsValidIdentityNumber(t *testing.T) {
	assert.True(t, IsValidIdentityNumber("12345678"))
	assert.True(t, IsValidIdentityNumber("0"))
	assert.False(t, IsValidIdentityNumber(""))
	assert.False(t, IsValidIdentityNumber("1234-5678"))
	assert.False(t, IsValidIdentityNumber("12 34"))
	assert.False(t, IsValidIdentityNumber("١٢٣"))
}

func TestIsValidPIN(t *testing.T) {
	tests := []struct {
		pin   string
		valid bool
	}{
		{pin: "1234", valid: true},
		{pin: "0000", valid: true},
		{pin: "123", valid: false},
		{pin: "12345", valid: false},
		{pin: "12a4", valid: false},
		{pin: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.pin, func(t *testing.T) {
			if got := IsValidPIN(tt.pin); got != tt.valid {
				t.Fatalf("IsValidPIN(%q) = %v, want %v", tt.pin, got, tt.valid)
			}
		})
	}
}

func TestIsValidAccountNumber(t *testing.T) {
	assert.True(t, IsValidAccountNumber("100000"))
	assert.True(t, IsValidAccountNumber("999999"))
	assert.False(t, IsValidAccountNumber("99999"))
	assert.False(t, IsValidAccountNumber("1000000"))
	assert.False(t, IsValidAccountNumber("12345a"))
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount("500.00")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromInt(500)))

	d, err = ParseAmount("-5")
	require.NoError(t, err)
	assert.True(t, d.IsNegative())

	d, err = ParseAmount("999999999999999.99")
	require.NoError(t, err)
	assert.Equal(t, "999999999999999.99", d.StringFixed(2))

	_, err = ParseAmount("")
	assert.ErrorIs(t, err, ErrEmptyAmount)
}

func TestParseAmount_Malformed(t *testing.T) {
	inputs := []string{
		"five",
		"1,000",
		"1e3",
		"1e-20000000",
		"1E+400",
		"0.001",
		".5",
		"5.",
		"1000000000000000",
		"100000000000000000000",
		" 10",
		"0x10",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := ParseAmount(in)
			assert.ErrorIs(t, err, ErrMalformedAmount)
		})
	}
}
