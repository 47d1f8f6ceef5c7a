package payments

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/apperr"
)

func TestParseAmount(t *testing.T) {
	ok := map[string]int64{
		"500":    50000,
		"525.00": 52500,
		"12.5":   1250,
		" 0.99 ": 99,
		"0":      0,
	}
	for in, want := range ok {
		got, err := ParseAmount(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	maxWhole := strconv.FormatInt((MaxAmount-99)/100, 10)
	got, err := ParseAmount(maxWhole + ".99")
	require.NoError(t, err)
	assert.LessOrEqual(t, got, int64(MaxAmount))

	for _, in := range []string{"", "abc", "-5", "1.234", "1.", ".5", "1.-5", "+3",
		"922337203685477580", "99999999999999999999", maxWhole + "0"} {
		_, err := ParseAmount(in)
		assert.True(t, apperr.Is(err, apperr.CodeValidationFailed), in)
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "525.00", FormatAmount(52500))
	assert.Equal(t, "0.05", FormatAmount(5))
	assert.Equal(t, "-1.50", FormatAmount(-150))
}

func TestQuoteFor(t *testing.T) {
	q, err := QuoteFor("500")
	require.NoError(t, err)
	assert.Equal(t, Quote{Wage: "500.00", ServiceFee: "25.00", Total: "525.00"}, q)

	big := strconv.FormatInt(MaxAmount/100-1, 10)
	q, err = QuoteFor(big)
	require.NoError(t, err)
	assert.NotContains(t, q.Total, "-", "fee on the largest wage stays positive")

	q, err = QuoteFor("0.10")
	require.NoError(t, err)
	assert.Equal(t, "0.01", q.ServiceFee, "half-up rounding of 0.5 minor units")

	_, err = QuoteFor("five hundred")
	assert.Error(t, err)
}
