package exif

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bstardust/exif-editor/pkg/common"
)

const (
	tagImageWidth        uint16 = 0x0100
	tagMake              uint16 = 0x010f
	tagOrientation       uint16 = 0x0112
	tagXResolution       uint16 = 0x011a
	tagExifVersion       uint16 = 0x9000
	tagShutterSpeedValue uint16 = 0x9201
	tagUnregistered      uint16 = 0xbeef
)

func newTestCoercer(t *testing.T) *Coercer {
	t.Helper()
	registry, err := NewRegistry()
	require.NoError(t, err)
	return NewCoercer(registry)
}

func TestConvert_Integers(t *testing.T) {
	c := newTestCoercer(t)

	for _, n := range []int64{0, 1, 6, 65535} {
		v, err := c.Convert(strconv.FormatInt(n, 10), tagOrientation, CategoryZeroth)
		require.NoError(t, err)
		assert.Equal(t, Unsigned{n}, v)
	}

	v, err := c.Convert(strconv.FormatUint(math.MaxUint32, 10), tagImageWidth, CategoryZeroth)
	require.NoError(t, err)
	assert.Equal(t, Unsigned{math.MaxUint32}, v)

	v, err = c.Convert("+5", tagOrientation, CategoryZeroth)
	require.NoError(t, err)
	assert.Equal(t, Unsigned{5}, v)
}

func TestConvert_IntegerWidthLeftToWriter(t *testing.T) {
	c := newTestCoercer(t)

	v, err := c.Convert("70000", tagOrientation, CategoryZeroth)
	require.NoError(t, err)
	assert.Equal(t, Unsigned{70000}, v)

	v, err = c.Convert("-5", tagOrientation, CategoryZeroth)
	require.NoError(t, err)
	assert.Equal(t, Unsigned{-5}, v)

	v, err = c.Convert("1.5", tagOrientation, CategoryZeroth)
	require.Error(t, err)
	assert.Equal(t, Raw("1.5"), v)
}

func TestConvert_Rational(t *testing.T) {
	c := newTestCoercer(t)

	pairs := []Rational{{72, 1}, {300, 100}, {1, 3}, {4294967295, 1}}
	for _, p := range pairs {
		v, err := c.Convert(p.String(), tagXResolution, CategoryZeroth)
		require.NoError(t, err)
		assert.Equal(t, Rationals{p}, v)
	}
}

func TestConvert_SignedRational(t *testing.T) {
	c := newTestCoercer(t)

	v, err := c.Convert("(-1,3)", tagShutterSpeedValue, CategoryExif)
	require.NoError(t, err)
	assert.Equal(t, SRationals{{-1, 3}}, v)
}

func TestConvert_UnsignedRationalKeepsSign(t *testing.T) {
	c := newTestCoercer(t)

	v, err := c.Convert("(-1,3)", tagXResolution, CategoryZeroth)
	require.NoError(t, err)
	assert.Equal(t, Rationals{{-1, 3}}, v)

	v, err = c.Convert("(1,-3)", tagXResolution, CategoryZeroth)
	require.NoError(t, err)
	assert.Equal(t, Rationals{{1, -3}}, v)
}

func TestConvert_MalformedRationalKeepsText(t *testing.T) {
	c := newTestCoercer(t)

	v, err := c.Convert("abc", tagXResolution, CategoryZeroth)
	assert.Equal(t, Raw("abc"), v)

	var malformed *common.MalformedValueError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, CategoryZeroth, malformed.Category)
	assert.Equal(t, tagXResolution, malformed.TagID)
	assert.Equal(t, "abc", malformed.Text)
}

func TestConvert_ASCII(t *testing.T) {
	c := newTestCoercer(t)

	v, err := c.Convert("Nikon Ü", tagMake, CategoryZeroth)
	require.NoError(t, err)
	assert.Equal(t, Text("Nikon Ü"), v)
}

func TestConvert_Undefined(t *testing.T) {
	c := newTestCoercer(t)

	v, err := c.Convert("0231", tagExifVersion, CategoryExif)
	require.NoError(t, err)
	assert.Equal(t, Bytes("0231"), v)
}

func TestConvert_UnknownTagPassesThrough(t *testing.T) {
	c := newTestCoercer(t)

	v, err := c.Convert("(1,2)", tagUnregistered, CategoryZeroth)
	require.NoError(t, err)
	assert.Equal(t, Raw("(1,2)"), v)

	v, err = c.Convert("42", tagMake, "MakerNote")
	require.NoError(t, err)
	assert.Equal(t, Raw("42"), v)
}

func TestConvertAs_Signed(t *testing.T) {
	v, err := convertAs(TypeSLong, "-42")
	require.NoError(t, err)
	assert.Equal(t, Signed{-42}, v)

	v, err = convertAs(TypeSShort, "-32768 32767")
	require.NoError(t, err)
	assert.Equal(t, Signed{-32768, 32767}, v)

	v, err = convertAs(TypeSByte, "200")
	require.NoError(t, err)
	assert.Equal(t, Signed{200}, v)

	_, err = convertAs(TypeShort, "1e3")
	assert.Error(t, err)

	_, err = convertAs(TypeLong, "   ")
	assert.Error(t, err)
}

func TestConvertAs_FallbackIsRaw(t *testing.T) {
	v, err := convertAs(TypeDouble, "1.5")
	require.NoError(t, err)
	assert.Equal(t, Raw("1.5"), v)
}

func TestConvertAs_MultiComponent(t *testing.T) {
	v, err := convertAs(TypeShort, "8 8 8")
	require.NoError(t, err)
	assert.Equal(t, Unsigned{8, 8, 8}, v)

	v, err = convertAs(TypeRational, "(48,1) (51,1) (2388,100)")
	require.NoError(t, err)
	assert.Equal(t, Rationals{{48, 1}, {51, 1}, {2388, 100}}, v)
}

func TestRegistry_Lookup(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)

	def, err := registry.Lookup(CategoryZeroth, tagMake)
	require.NoError(t, err)
	assert.Equal(t, "Make", def.Name)
	assert.Equal(t, TypeASCII, def.Type)

	def, err = registry.Lookup(CategoryZeroth, tagImageWidth)
	require.NoError(t, err)
	assert.Equal(t, TypeLong, def.Type)

	def, err = registry.Lookup(CategoryGPS, TagGPSLatitude)
	require.NoError(t, err)
	assert.Equal(t, "GPSLatitude", def.Name)
	assert.Equal(t, TypeRational, def.Type)

	_, err = registry.Lookup(CategoryZeroth, tagUnregistered)
	assert.True(t, errors.Is(err, common.ErrUnknownTag))
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "8 8 8", Unsigned{8, 8, 8}.String())
	assert.Equal(t, "-3", Signed{-3}.String())
	assert.Equal(t, "(72,1)", Rationals{{72, 1}}.String())
	assert.Equal(t, "(1,2) (3,4)", SRationals{{1, 2}, {3, 4}}.String())
	assert.Equal(t, "Canon", Text("Canon").String())
	assert.Equal(t, "ab", Bytes{'a', 0xff, 'b'}.String())
	assert.Equal(t, "1.5", Floats{1.5}.String())
}
