package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigitFields(t *testing.T) {
	tests := []struct {
		name  string
		check func(string) bool
		input string
		want  bool
	}{
		{"national id valid", NationalID, "12345678", true},
		{"national id too short", NationalID, "1234567", false},
		{"national id letters", NationalID, "1234567a", false},
		{"national id unicode digit rejected", NationalID, "１2345678", false},
		{"phone valid", Phone, "99887766", true},
		{"phone with dash", Phone, "9988-766", false},
		{"postal empty allowed", PostalCode, "", true},
		{"postal valid", PostalCode, "1014", true},
		{"postal three digits", PostalCode, "101", false},
		{"postal five digits", PostalCode, "10145", false},
		{"employee id valid", EmployeeID, "445566", true},
		{"employee id eight digits", EmployeeID, "44556677", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.input))
		})
	}
}

func TestParseDMY(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("valid date", func(t *testing.T) {
		dob, ok := ParseDMY("02/01/1990", now)
		require.True(t, ok)
		assert.Equal(t, time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC), dob)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, input := range []string{"", "1990-01-02", "31/02/1990", "2/1/x", "99/99/1990"} {
			_, ok := ParseDMY(input, now)
			assert.False(t, ok, "input %q should fail", input)
		}
	})

	t.Run("rejects future birth date", func(t *testing.T) {
		_, ok := ParseDMY("16/06/2025", now)
		assert.False(t, ok)
	})
}

func TestAgeAt(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	t.Run("birthday today counts", func(t *testing.T) {
		dob := time.Date(2005, 6, 15, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, 20, AgeAt(dob, now))
		assert.True(t, AgeAtLeast(dob, now, 20))
	})

	t.Run("birthday tomorrow does not", func(t *testing.T) {
		dob := time.Date(2005, 6, 16, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, 19, AgeAt(dob, now))
		assert.False(t, AgeAtLeast(dob, now, 20))
	})

	t.Run("month comparison not day count", func(t *testing.T) {
		// A leap-day style trap: 365.25-day arithmetic would land on the
		// wrong side of the birthday here.
		dob := time.Date(2005, 7, 1, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, 19, AgeAt(dob, now))
	})
}

func TestRequired(t *testing.T) {
	missing := Required(map[string]string{
		"first_name": "Aisha",
		"last_name":  "   ",
		"bank_name":  "",
		"position":   "Loan Officer",
	})
	assert.Equal(t, []string{"bank_name", "last_name"}, missing)
}
