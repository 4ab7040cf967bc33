package currencyutils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{name: "plain integer", input: "1500", expected: "1500", ok: true},
		{name: "dot decimal", input: "1234.56", expected: "1234.56", ok: true},
		{name: "comma decimal", input: "1234,56", expected: "1234.56", ok: true},
		{name: "negative", input: "-99.90", expected: "-99.9", ok: true},
		{name: "internal whitespace", input: "1 234,56", expected: "1234.56", ok: true},
		{name: "surrounding whitespace", input: "  42  ", expected: "42", ok: true},
		{name: "zero is a valid amount", input: "0", expected: "0", ok: true},
		{name: "empty", input: "", ok: false},
		{name: "bare minus", input: "-", ok: false},
		{name: "garbage", input: "abc", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, ok := ParseAmount(tt.input)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				expected, err := decimal.NewFromString(tt.expected)
				require.NoError(t, err)
				assert.True(t, expected.Equal(amount), "expected %s, got %s", expected, amount)
			}
		})
	}
}

func TestFormatAmount(t *testing.T) {
	amount := decimal.NewFromFloat(1234.5)
	assert.Equal(t, "RUB 1234.50", FormatAmount(amount, "RUB"))
	assert.Equal(t, "1234.50", FormatAmount(amount, ""))
}
