package domain

import (
	"strconv"
	"strings"
)

// RoyaltySplit is the percentage triple applied to resale revenue.
type RoyaltySplit struct {
	PrimarySeller     uint64
	Platform          uint64
	SecondaryPlatform uint64
}

// DefaultRoyaltySplit is used for missing or unparseable spec components.
var DefaultRoyaltySplit = RoyaltySplit{PrimarySeller: 10, Platform: 5, SecondaryPlatform: 5}

// ParseRoyaltySpec reads a "primary,platform,secondary" percentage spec.
// It never fails: a spec with fewer than three components yields the default
// split, and each unparseable component falls back to its own default.
func ParseRoyaltySpec(spec string) RoyaltySplit {
	parts := strings.Split(spec, ",")
	if len(parts) < 3 {
		return DefaultRoyaltySplit
	}

	split := DefaultRoyaltySplit
	if v, ok := parsePercent(parts[0]); ok {
		split.PrimarySeller = v
	}
	if v, ok := parsePercent(parts[1]); ok {
		split.Platform = v
	}
	if v, ok := parsePercent(parts[2]); ok {
		split.SecondaryPlatform = v
	}
	return split
}

// ParseRoyaltySpecStrict accepts exactly three integer percentages whose sum
// is between 1 and 100.
func ParseRoyaltySpecStrict(spec string) (RoyaltySplit, error) {
	parts := strings.Split(spec, ",")
	if len(parts) != 3 {
		return RoyaltySplit{}, ErrInvalidRoyaltySpec
	}
	var values [3]uint64
	for i, part := range parts {
		v, ok := parsePercent(part)
		if !ok {
			return RoyaltySplit{}, ErrInvalidRoyaltySpec
		}
		values[i] = v
	}
	split := RoyaltySplit{PrimarySeller: values[0], Platform: values[1], SecondaryPlatform: values[2]}
	total, err := split.Total()
	if err != nil || total == 0 || total > 100 {
		return RoyaltySplit{}, ErrInvalidRoyaltySpec
	}
	return split, nil
}

func parsePercent(s string) (uint64, bool) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// String renders the split back into spec form.
func (r RoyaltySplit) String() string {
	return strconv.FormatUint(r.PrimarySeller, 10) + "," +
		strconv.FormatUint(r.Platform, 10) + "," +
		strconv.FormatUint(r.SecondaryPlatform, 10)
}

// Percents returns the components in payout order.
func (r RoyaltySplit) Percents() [3]uint64 {
	return [3]uint64{r.PrimarySeller, r.Platform, r.SecondaryPlatform}
}

// Total sums the three percentages.
func (r RoyaltySplit) Total() (uint64, error) {
	sum, err := CheckedAdd(r.PrimarySeller, r.Platform)
	if err != nil {
		return 0, err
	}
	return CheckedAdd(sum, r.SecondaryPlatform)
}

// Accrue returns floor(price * total / 100).
func (r RoyaltySplit) Accrue(price uint64) (uint64, error) {
	total, err := r.Total()
	if err != nil {
		return 0, err
	}
	product, err := CheckedMul(price, total)
	if err != nil {
		return 0, err
	}
	return product / 100, nil
}

// Divide splits amount proportionally to the three percentages. The last
// share takes the rounding remainder so the shares always sum to amount.
func (r RoyaltySplit) Divide(amount uint64) ([3]uint64, error) {
	total, err := r.Total()
	if err != nil {
		return [3]uint64{}, err
	}
	if total == 0 {
		return [3]uint64{}, ErrInvalidRoyaltySplit
	}

	first, err := CheckedMul(amount, r.PrimarySeller)
	if err != nil {
		return [3]uint64{}, err
	}
	second, err := CheckedMul(amount, r.Platform)
	if err != nil {
		return [3]uint64{}, err
	}
	a := first / total
	b := second / total
	return [3]uint64{a, b, amount - a - b}, nil
}
