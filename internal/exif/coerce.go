package exif

import (
	"errors"
	"strconv"
	"strings"

	"github.com/bstardust/exif-editor/pkg/common"
)

var errEmpty = errors.New("empty value")

// Coercer converts edited text into the value type declared for a tag
type Coercer struct {
	registry *Registry
}

// NewCoercer creates a coercer backed by the registry
func NewCoercer(registry *Registry) *Coercer {
	return &Coercer{registry: registry}
}

// Registry returns the registry the coercer resolves tags with
func (c *Coercer) Registry() *Registry {
	return c.registry
}

// Convert turns raw text into the value declared for the tag.
//
// Tags unknown to the registry are returned as Raw with no error. When the
// text cannot be parsed, the returned value is the Raw text and the error
// is a *common.MalformedValueError.
func (c *Coercer) Convert(raw string, tagID uint16, category string) (Value, error) {
	def, err := c.registry.Lookup(category, tagID)
	if err != nil {
		return Raw(raw), nil
	}

	v, err := convertAs(def.Type, raw)
	if err != nil {
		return Raw(raw), common.NewMalformedValueError(category, tagID, raw, err)
	}
	return v, nil
}

func convertAs(t TagType, raw string) (Value, error) {
	switch t {
	case TypeByte, TypeShort, TypeLong:
		n, err := parseIntegers(raw)
		if err != nil {
			return nil, err
		}
		return Unsigned(n), nil
	case TypeSByte, TypeSShort, TypeSLong:
		n, err := parseIntegers(raw)
		if err != nil {
			return nil, err
		}
		return Signed(n), nil
	case TypeASCII:
		return Text(raw), nil
	case TypeRational:
		rs, err := ParseRationalList(raw)
		if err != nil {
			return nil, err
		}
		return Rationals(rs), nil
	case TypeSRational:
		rs, err := ParseRationalList(raw)
		if err != nil {
			return nil, err
		}
		return SRationals(rs), nil
	case TypeUndefined:
		return Bytes(raw), nil
	default:
		return Raw(raw), nil
	}
}

// parseIntegers parses whitespace-separated decimal integers. Range
// against the tag's width is left to the writer.
func parseIntegers(raw string) ([]int64, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil, errEmpty
	}

	out := make([]int64, len(fields))
	for i, f := range fields {
		n, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
