package metadata

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bstardust/exif-editor/internal/exif"
	"github.com/bstardust/exif-editor/pkg/common"
)

const (
	tagMake        uint16 = 0x010f
	tagModel       uint16 = 0x0110
	tagOrientation uint16 = 0x0112
	tagXResolution uint16 = 0x011a
	tagDateTime    uint16 = 0x0132
	tagExifVersion uint16 = 0x9000
)

func newJPEG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func newTestStore(t *testing.T) *Store {
	t.Helper()

	registry, err := exif.NewRegistry()
	require.NoError(t, err)
	store, err := NewStore(registry)
	require.NoError(t, err)
	return store
}

func sampleDirectory() *exif.Directory {
	dir := exif.NewDirectory()
	dir.Set(exif.CategoryZeroth, tagMake, exif.Text("Acme"))
	dir.Set(exif.CategoryZeroth, tagModel, exif.Text("Pinhole 1"))
	dir.Set(exif.CategoryZeroth, tagOrientation, exif.Unsigned{6})
	dir.Set(exif.CategoryZeroth, tagXResolution, exif.Rationals{{Num: 72, Den: 1}})
	dir.Set(exif.CategoryZeroth, tagDateTime, exif.Text("2024:05:01 10:20:30"))
	dir.Set(exif.CategoryExif, tagExifVersion, exif.Bytes("0231"))
	dir.Merge(exif.CategoryGPS, exif.EncodeGPS(48.8566, 2.3522).IFD())
	return dir
}

func TestRead_NoExif(t *testing.T) {
	store := newTestStore(t)

	dir, err := store.Read(newJPEG(t))
	require.NoError(t, err)
	assert.True(t, dir.IsEmpty())
}

func TestRead_NotJPEG(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Read([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrNotJPEG)
}

func TestWriteRead_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	want := sampleDirectory()

	out, err := store.Write(newJPEG(t), want)
	require.NoError(t, err)

	got, err := store.Read(out)
	require.NoError(t, err)

	for _, category := range []string{exif.CategoryZeroth, exif.CategoryExif, exif.CategoryGPS} {
		for id, v := range want.IFDs[category] {
			actual, ok := got.Get(category, id)
			if assert.True(t, ok, "%s tag 0x%04x missing", category, id) {
				assert.Equal(t, v, actual, "%s tag 0x%04x", category, id)
			}
		}
	}

	// structural pointers are not exposed as tags
	_, ok := got.Get(exif.CategoryZeroth, 0x8769)
	assert.False(t, ok)
	_, ok = got.Get(exif.CategoryZeroth, 0x8825)
	assert.False(t, ok)

	_, err = jpeg.Decode(bytes.NewReader(out))
	assert.NoError(t, err)
}

func TestWriteRead_Thumbnail(t *testing.T) {
	store := newTestStore(t)
	thumb := newJPEG(t)

	dir := exif.NewDirectory()
	dir.Set(exif.CategoryZeroth, tagMake, exif.Text("Acme"))
	dir.Thumbnail = thumb

	out, err := store.Write(newJPEG(t), dir)
	require.NoError(t, err)

	got, err := store.Read(out)
	require.NoError(t, err)
	assert.Equal(t, thumb, got.Thumbnail)
	assert.Empty(t, got.IFDs[exif.CategoryFirst])
}

func TestWrite_EmptyDirectoryDropsExif(t *testing.T) {
	store := newTestStore(t)

	withExif, err := store.Write(newJPEG(t), sampleDirectory())
	require.NoError(t, err)

	out, err := store.Write(withExif, exif.NewDirectory())
	require.NoError(t, err)

	dir, err := store.Read(out)
	require.NoError(t, err)
	assert.True(t, dir.IsEmpty())
}

func TestWrite_TypeMismatch(t *testing.T) {
	store := newTestStore(t)

	dir := sampleDirectory()
	dir.Set(exif.CategoryZeroth, tagOrientation, exif.Raw("abc"))

	out, err := store.Write(newJPEG(t), dir)
	assert.Nil(t, out)

	var serr *common.SerializationError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, exif.CategoryZeroth, serr.Category)
	assert.Equal(t, tagOrientation, serr.TagID)
}

func TestWrite_Overflow(t *testing.T) {
	store := newTestStore(t)

	dir := exif.NewDirectory()
	dir.Set(exif.CategoryZeroth, tagOrientation, exif.Unsigned{70000})

	_, err := store.Write(newJPEG(t), dir)

	var serr *common.SerializationError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, tagOrientation, serr.TagID)
}

func TestWrite_NotJPEG(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Write([]byte("nope"), sampleDirectory())

	var serr *common.SerializationError
	require.True(t, errors.As(err, &serr))
	assert.ErrorIs(t, err, ErrNotJPEG)
}

func TestInferType(t *testing.T) {
	assert.Equal(t, exif.TypeLong, InferType(exif.Unsigned{1}))
	assert.Equal(t, exif.TypeSLong, InferType(exif.Signed{-1}))
	assert.Equal(t, exif.TypeRational, InferType(exif.Rationals{{Num: 1, Den: 2}}))
	assert.Equal(t, exif.TypeSRational, InferType(exif.SRationals{{Num: -1, Den: 2}}))
	assert.Equal(t, exif.TypeUndefined, InferType(exif.Bytes{1}))
	assert.Equal(t, exif.TypeDouble, InferType(exif.Floats{1}))
	assert.Equal(t, exif.TypeASCII, InferType(exif.Text("a")))
	assert.Equal(t, exif.TypeASCII, InferType(exif.Raw("a")))
}

func TestUnsignedPayload_Widths(t *testing.T) {
	p, err := unsignedPayload(exif.TypeByte, exif.Unsigned{1, 255})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 255}, p)

	_, err = unsignedPayload(exif.TypeByte, exif.Unsigned{256})
	assert.Error(t, err)

	p, err = unsignedPayload(exif.TypeShort, exif.Unsigned{65535})
	require.NoError(t, err)
	assert.Equal(t, []uint16{65535}, p)

	_, err = unsignedPayload(exif.TypeLong, exif.Unsigned{})
	assert.Error(t, err)

	_, err = unsignedPayload(exif.TypeShort, exif.Unsigned{-1})
	assert.Error(t, err)

	_, err = unsignedPayload(exif.TypeLong, exif.Unsigned{math.MaxUint32 + 1})
	assert.Error(t, err)
}

func TestSignedPayload_Range(t *testing.T) {
	p, err := signedPayload(exif.Signed{math.MinInt32, math.MaxInt32})
	require.NoError(t, err)
	assert.Equal(t, []int32{math.MinInt32, math.MaxInt32}, p)

	_, err = signedPayload(exif.Signed{math.MaxInt32 + 1})
	assert.Error(t, err)
}

func TestWrite_NegativeRationalIsSerializationError(t *testing.T) {
	store := newTestStore(t)

	dir := exif.NewDirectory()
	dir.Set(exif.CategoryZeroth, tagXResolution, exif.Rationals{{Num: -1, Den: 3}})

	_, err := store.Write(newJPEG(t), dir)

	var serr *common.SerializationError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, tagXResolution, serr.TagID)
}

func TestRationalPayload_Range(t *testing.T) {
	_, err := rationalPayload(exif.Rationals{{Num: 1, Den: 0}})
	assert.Error(t, err)

	_, err = signedRationalPayload(exif.SRationals{{Num: 1 << 40, Den: 1}})
	assert.Error(t, err)

	p, err := signedRationalPayload(exif.SRationals{{Num: -1, Den: 3}})
	require.NoError(t, err)
	assert.Equal(t, int32(-1), p[0].Numerator)
}
