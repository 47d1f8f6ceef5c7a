package payments

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Windi-Fikriyansyah/gigmarket_be/internal/apperr"
)

// ServiceFeePercent is added on top of the wage when a hirer pays.
const ServiceFeePercent = 5

// MaxAmount is the largest amount, in minor units, that ParseAmount accepts.
// Adding the service fee to it cannot overflow int64.
const MaxAmount = math.MaxInt64 / (100 + ServiceFeePercent)

// ParseAmount converts a decimal string with at most two fraction digits
// ("525", "525.5", "525.00") into minor units.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, apperr.ValidationFailed("amount is required")
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if !digits(whole) || (hasFrac && !digits(frac)) || len(frac) > 2 {
		return 0, apperr.ValidationFailed(fmt.Sprintf("invalid amount %q", s))
	}
	for len(frac) < 2 {
		frac += "0"
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || w > (MaxAmount-99)/100 {
		return 0, apperr.ValidationFailed(fmt.Sprintf("invalid amount %q", s))
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, apperr.ValidationFailed(fmt.Sprintf("invalid amount %q", s))
	}
	return w*100 + f, nil
}

func digits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatAmount renders minor units with two decimals.
func FormatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

// Quote is what a hirer is asked to pay for a job.
type Quote struct {
	Wage       string `json:"wage"`
	ServiceFee string `json:"service_fee"`
	Total      string `json:"total"`
}

// QuoteFor adds the service fee (rounded half up) to a wage.
func QuoteFor(wage string) (Quote, error) {
	w, err := ParseAmount(wage)
	if err != nil {
		return Quote{}, err
	}
	fee := (w*ServiceFeePercent + 50) / 100
	return Quote{
		Wage:       FormatAmount(w),
		ServiceFee: FormatAmount(fee),
		Total:      FormatAmount(w + fee),
	}, nil
}
