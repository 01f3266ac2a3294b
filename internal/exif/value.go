package exif

import (
	"strconv"
	"strings"
)

// Value is a typed tag value. The set of implementations is closed.
type Value interface {
	// String renders the value in its editable form
	String() string
	isValue()
}

// Unsigned holds BYTE, SHORT or LONG components. Components are kept as
// parsed; the width of the declared type is checked when the tag is written.
type Unsigned []int64

// Signed holds SBYTE, SSHORT or SLONG components
type Signed []int64

// Text holds ASCII tag contents as UTF-8 bytes without a NUL terminator
type Text []byte

// Rationals holds RATIONAL components
type Rationals []Rational

// SRationals holds SRATIONAL components
type SRationals []Rational

// Bytes holds UNDEFINED contents
type Bytes []byte

// Floats holds FLOAT or DOUBLE components
type Floats []float64

// Raw is edited text that was kept unconverted
type Raw string

func (Unsigned) isValue()   {}
func (Signed) isValue()     {}
func (Text) isValue()       {}
func (Rationals) isValue()  {}
func (SRationals) isValue() {}
func (Bytes) isValue()      {}
func (Floats) isValue()     {}
func (Raw) isValue()        {}

func (v Unsigned) String() string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.FormatInt(n, 10)
	}
	return strings.Join(parts, " ")
}

func (v Signed) String() string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.FormatInt(n, 10)
	}
	return strings.Join(parts, " ")
}

// String decodes the bytes as UTF-8, dropping invalid sequences
func (v Text) String() string {
	return strings.ToValidUTF8(string(v), "")
}

func (v Rationals) String() string {
	return joinRationals(v)
}

func (v SRationals) String() string {
	return joinRationals(v)
}

// String decodes the bytes as UTF-8, dropping invalid sequences
func (v Bytes) String() string {
	return strings.ToValidUTF8(string(v), "")
}

func (v Floats) String() string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

func (v Raw) String() string {
	return string(v)
}

func joinRationals(rs []Rational) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = r.String()
	}
	return strings.Join(parts, " ")
}
