package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAmount(t *testing.T) {
	cases := []struct {
		in   string
		want error
	}{
		{"0.01", nil},
		{"1000", nil},
		{"9999999999999999.99", nil},
		{"0", ErrInvalidAmount},
		{"-5", ErrInvalidAmount},
		{"1.005", ErrInvalidAmount},
		{"10000000000000000", ErrInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			err := ValidateAmount(decimal.RequireFromString(tc.in))
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestValidateBalanceAllowsZero(t *testing.T) {
	assert.NoError(t, ValidateBalance(decimal.Zero))
	assert.ErrorIs(t, ValidateBalance(decimal.RequireFromString("-0.01")), ErrInvalidAmount)
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount("12.50")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("12.5")))

	_, err = ParseAmount("twelve")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestSequenceRendering(t *testing.T) {
	assert.Equal(t, "11235814", AccountNumberFromSequence(AccountNumberSequence.Start+1))
	assert.Equal(t, "SBIFSC5994", IFSCFromSequence(IFSCSequence.Start+1))

	s, ok := LookupSequence("IFSCSequence")
	require.True(t, ok)
	assert.Equal(t, int64(5993), s.Start)

	_, ok = LookupSequence("nope")
	assert.False(t, ok)
}

func TestPageNormalize(t *testing.T) {
	assert.Equal(t, Page{Limit: DefaultPageLimit}, Page{}.Normalize())
	assert.Equal(t, Page{Limit: MaxPageLimit, Offset: 0}, Page{Limit: 10000, Offset: -3}.Normalize())
}
