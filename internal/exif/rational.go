package exif

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RationalPrecision is the denominator used when encoding decimals
const RationalPrecision = 10000000

var (
	errNotRational     = errors.New("expected (numerator,denominator)")
	errZeroDenominator = errors.New("denominator must not be zero")
)

// Rational is a numerator/denominator pair
type Rational struct {
	Num int64
	Den int64
}

// String renders the pair as "(numerator,denominator)"
func (r Rational) String() string {
	return fmt.Sprintf("(%d,%d)", r.Num, r.Den)
}

// FloatToRational encodes the magnitude of value with a fixed denominator.
// A nil value encodes as (0,1).
func FloatToRational(value *float64) Rational {
	if value == nil {
		return Rational{Num: 0, Den: 1}
	}
	return FloorRational(*value)
}

// FloorRational truncates |v| to a multiple of 1/RationalPrecision
func FloorRational(v float64) Rational {
	return Rational{
		Num: int64(math.Abs(v) * RationalPrecision),
		Den: RationalPrecision,
	}
}

// ParseRational parses text of the form "(numerator,denominator)".
// The parentheses are optional.
func ParseRational(text string) (Rational, error) {
	body := strings.Trim(strings.TrimSpace(text), "()")
	numText, denText, ok := strings.Cut(body, ",")
	if !ok {
		return Rational{}, errNotRational
	}

	num, err := strconv.ParseInt(strings.TrimSpace(numText), 10, 64)
	if err != nil {
		return Rational{}, fmt.Errorf("numerator: %w", err)
	}
	den, err := strconv.ParseInt(strings.TrimSpace(denText), 10, 64)
	if err != nil {
		return Rational{}, fmt.Errorf("denominator: %w", err)
	}
	if den == 0 {
		return Rational{}, errZeroDenominator
	}

	return Rational{Num: num, Den: den}, nil
}

// ParseRationalList parses one or more pairs such as "(48,1) (51,1) (2388,100)".
// Text with at most one comma is parsed as a single pair.
func ParseRationalList(text string) ([]Rational, error) {
	if strings.Count(text, ",") <= 1 {
		r, err := ParseRational(text)
		if err != nil {
			return nil, err
		}
		return []Rational{r}, nil
	}

	var out []Rational
	for _, part := range strings.Split(text, ")") {
		part = strings.Trim(part, " \t,;(")
		if part == "" {
			continue
		}
		r, err := ParseRational(part)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", len(out)+1, err)
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, errNotRational
	}
	return out, nil
}
