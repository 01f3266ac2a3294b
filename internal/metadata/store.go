// Package metadata reads EXIF directories out of JPEG images and writes
// edited directories back into them.
package metadata

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	exifv3 "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	jis "github.com/dsoprea/go-jpeg-image-structure/v2"

	"github.com/bstardust/exif-editor/internal/exif"
	"github.com/bstardust/exif-editor/internal/logger"
	"github.com/bstardust/exif-editor/pkg/common"
)

// IFD1 tags locating the embedded thumbnail
const (
	tagThumbnailOffset uint16 = 0x0201
	tagThumbnailLength uint16 = 0x0202
)

// ErrNotJPEG is returned for input that is not a JPEG image
var ErrNotJPEG = errors.New("not a JPEG image")

// Store converts between JPEG bytes and EXIF directories
type Store struct {
	registry   *exif.Registry
	ifdMapping *exifcommon.IfdMapping
	byteOrder  binary.ByteOrder
}

// NewStore creates a store that resolves tags with the registry
func NewStore(registry *exif.Registry) (*Store, error) {
	im, err := exifcommon.NewIfdMappingWithStandard()
	if err != nil {
		return nil, fmt.Errorf("failed to create IFD mapping: %w", err)
	}

	return &Store{
		registry:   registry,
		ifdMapping: im,
		byteOrder:  exifcommon.EncodeDefaultByteOrder,
	}, nil
}

func (s *Store) parse(image []byte) (*jis.SegmentList, error) {
	parser := jis.NewJpegMediaParser()
	if !parser.LooksLikeFormat(image) {
		return nil, ErrNotJPEG
	}

	intfc, err := parser.ParseBytes(image)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JPEG: %w", err)
	}

	sl, ok := intfc.(*jis.SegmentList)
	if !ok {
		return nil, ErrNotJPEG
	}
	return sl, nil
}

// Read returns the EXIF directory of a JPEG image. An image without an EXIF
// block yields an empty directory.
func (s *Store) Read(image []byte) (*exif.Directory, error) {
	if _, err := s.parse(image); err != nil {
		return nil, err
	}

	dir := exif.NewDirectory()

	rawExif, err := exifv3.SearchAndExtractExif(image)
	if err != nil {
		if errors.Is(err, exifv3.ErrNoExif) {
			logger.Debug("Image carries no EXIF block")
			return dir, nil
		}
		return nil, fmt.Errorf("failed to extract EXIF: %w", err)
	}

	_, index, err := exifv3.Collect(s.ifdMapping, s.registry.TagIndex(), rawExif)
	if err != nil {
		return nil, fmt.Errorf("failed to collect EXIF: %w", err)
	}

	for _, ifd := range index.Ifds {
		path := ifd.IfdIdentity().String()
		category, ok := exif.CategoryForPath(path)
		if !ok {
			logger.Debug("Skipping unsupported IFD %s", path)
			continue
		}

		for _, ite := range ifd.Entries() {
			if ite.ChildIfdPath() != "" {
				continue
			}
			if category == exif.CategoryFirst && (ite.TagId() == tagThumbnailOffset || ite.TagId() == tagThumbnailLength) {
				continue
			}

			v, err := valueFromEntry(ite)
			if err != nil {
				logger.Warn("Skipping %s tag 0x%04x: %v", category, ite.TagId(), err)
				continue
			}
			dir.Set(category, ite.TagId(), v)
		}

		if category == exif.CategoryFirst {
			if thumb, err := ifd.Thumbnail(); err == nil {
				dir.Thumbnail = thumb
			}
		}
	}

	return dir, nil
}

func valueFromEntry(ite *exifv3.IfdTagEntry) (exif.Value, error) {
	if ite.TagType() == exifcommon.TypeUndefined {
		raw, err := ite.GetRawBytes()
		if err != nil {
			return nil, err
		}
		return exif.Bytes(raw), nil
	}

	value, err := ite.Value()
	if err != nil {
		return nil, err
	}

	switch v := value.(type) {
	case string:
		return exif.Text(v), nil
	case []byte:
		out := make(exif.Unsigned, len(v))
		for i, n := range v {
			out[i] = int64(n)
		}
		return out, nil
	case []uint16:
		out := make(exif.Unsigned, len(v))
		for i, n := range v {
			out[i] = int64(n)
		}
		return out, nil
	case []uint32:
		out := make(exif.Unsigned, len(v))
		for i, n := range v {
			out[i] = int64(n)
		}
		return out, nil
	case []int32:
		out := make(exif.Signed, len(v))
		for i, n := range v {
			out[i] = int64(n)
		}
		return out, nil
	case []exifcommon.Rational:
		out := make(exif.Rationals, len(v))
		for i, r := range v {
			out[i] = exif.Rational{Num: int64(r.Numerator), Den: int64(r.Denominator)}
		}
		return out, nil
	case []exifcommon.SignedRational:
		out := make(exif.SRationals, len(v))
		for i, r := range v {
			out[i] = exif.Rational{Num: int64(r.Numerator), Den: int64(r.Denominator)}
		}
		return out, nil
	case []float32:
		out := make(exif.Floats, len(v))
		for i, f := range v {
			out[i] = float64(f)
		}
		return out, nil
	case []float64:
		return exif.Floats(v), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", value)
	}
}

// Write re-encodes the image with an EXIF block built from dir. Any value
// that cannot be encoded as its tag's declared type fails the whole write
// with a *common.SerializationError.
func (s *Store) Write(image []byte, dir *exif.Directory) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = common.NewSerializationError("", 0, "EXIF encoder failed", fmt.Errorf("%v", r))
		}
	}()

	sl, err := s.parse(image)
	if err != nil {
		return nil, common.NewSerializationError("", 0, "cannot re-encode image", err)
	}

	if dir == nil || dir.IsEmpty() {
		if _, err := sl.DropExif(); err != nil {
			return nil, common.NewSerializationError("", 0, "failed to drop EXIF segment", err)
		}
	} else {
		rootIb, err := s.build(dir)
		if err != nil {
			return nil, err
		}
		if err := sl.SetExif(rootIb); err != nil {
			return nil, common.NewSerializationError("", 0, "failed to set EXIF segment", err)
		}
	}

	buf := new(bytes.Buffer)
	if err := sl.Write(buf); err != nil {
		return nil, common.NewSerializationError("", 0, "failed to write JPEG", err)
	}

	logger.Debug("Encoded image with EXIF block (%d bytes)", buf.Len())
	return buf.Bytes(), nil
}

func (s *Store) build(dir *exif.Directory) (*exifv3.IfdBuilder, error) {
	ti := s.registry.TagIndex()
	rootIb := exifv3.NewIfdBuilder(s.ifdMapping, ti, exifcommon.IfdStandardIfdIdentity, s.byteOrder)

	var ifd1Ib *exifv3.IfdBuilder
	if len(dir.IFDs[exif.CategoryFirst]) > 0 || len(dir.Thumbnail) > 0 {
		ifd1Ib = exifv3.NewIfdBuilder(s.ifdMapping, ti, exifcommon.Ifd1StandardIfdIdentity, s.byteOrder)
		if err := rootIb.SetNextIb(ifd1Ib); err != nil {
			return nil, common.NewSerializationError(exif.CategoryFirst, 0, "failed to link IFD1", err)
		}
	}

	for _, category := range exif.Categories {
		ifd := dir.IFDs[category]
		if len(ifd) == 0 {
			continue
		}
		loc, _ := exif.Location(category)

		var ib *exifv3.IfdBuilder
		if category == exif.CategoryFirst {
			ib = ifd1Ib
		} else {
			var err error
			ib, err = exifv3.GetOrCreateIbFromRootIb(rootIb, loc.Path)
			if err != nil {
				return nil, common.NewSerializationError(category, 0, "failed to create IFD", err)
			}
		}

		for _, tagID := range ifd.SortedTags() {
			typeID, encoded, err := s.encode(category, tagID, ifd[tagID])
			if err != nil {
				return nil, common.NewSerializationError(category, tagID, "cannot encode value", err)
			}

			bt := exifv3.NewBuilderTag(
				loc.Identity.UnindexedString(),
				tagID,
				typeID,
				exifv3.NewIfdBuilderTagValueFromBytes(encoded),
				s.byteOrder,
			)
			if err := ib.Add(bt); err != nil {
				return nil, common.NewSerializationError(category, tagID, "failed to add tag", err)
			}
		}
	}

	if len(dir.Thumbnail) > 0 {
		if err := ifd1Ib.SetThumbnail(dir.Thumbnail); err != nil {
			return nil, common.NewSerializationError(exif.CategoryFirst, tagThumbnailOffset, "failed to set thumbnail", err)
		}
	}

	return rootIb, nil
}

// encode serializes v as the tag's declared type. Tags the registry does not
// know are written with the type implied by the value variant.
func (s *Store) encode(category string, tagID uint16, v exif.Value) (exifcommon.TagTypePrimitive, []byte, error) {
	target := InferType(v)
	if def, err := s.registry.Lookup(category, tagID); err == nil {
		target = def.Type
	}

	var payload interface{}
	mismatch := fmt.Errorf("%T value does not match declared type %s", v, target)

	switch target {
	case exif.TypeByte, exif.TypeShort, exif.TypeLong:
		u, ok := v.(exif.Unsigned)
		if !ok {
			return 0, nil, mismatch
		}
		p, err := unsignedPayload(target, u)
		if err != nil {
			return 0, nil, err
		}
		payload = p
	case exif.TypeSByte, exif.TypeSShort, exif.TypeSLong:
		sv, ok := v.(exif.Signed)
		if !ok {
			return 0, nil, mismatch
		}
		p, err := signedPayload(sv)
		if err != nil {
			return 0, nil, err
		}
		payload = p
	case exif.TypeASCII:
		switch t := v.(type) {
		case exif.Text:
			payload = string(t)
		case exif.Raw:
			payload = string(t)
		default:
			return 0, nil, mismatch
		}
	case exif.TypeRational:
		rs, ok := v.(exif.Rationals)
		if !ok {
			return 0, nil, mismatch
		}
		p, err := rationalPayload(rs)
		if err != nil {
			return 0, nil, err
		}
		payload = p
	case exif.TypeSRational:
		rs, ok := v.(exif.SRationals)
		if !ok {
			return 0, nil, mismatch
		}
		p, err := signedRationalPayload(rs)
		if err != nil {
			return 0, nil, err
		}
		payload = p
	case exif.TypeUndefined:
		b, ok := v.(exif.Bytes)
		if !ok {
			return 0, nil, mismatch
		}
		return exifcommon.TypeUndefined, []byte(b), nil
	case exif.TypeFloat:
		f, ok := v.(exif.Floats)
		if !ok {
			return 0, nil, mismatch
		}
		p := make([]float32, len(f))
		for i, x := range f {
			p[i] = float32(x)
		}
		payload = p
	case exif.TypeDouble:
		f, ok := v.(exif.Floats)
		if !ok {
			return 0, nil, mismatch
		}
		payload = []float64(f)
	default:
		return 0, nil, fmt.Errorf("unsupported declared type %s", target)
	}

	ed, err := exifcommon.NewValueEncoder(s.byteOrder).Encode(payload)
	if err != nil {
		return 0, nil, err
	}
	return ed.Type, ed.Encoded, nil
}

// InferType returns the EXIF type a value is written as when its tag is not
// in the registry
func InferType(v exif.Value) exif.TagType {
	switch v.(type) {
	case exif.Unsigned:
		return exif.TypeLong
	case exif.Signed:
		return exif.TypeSLong
	case exif.Rationals:
		return exif.TypeRational
	case exif.SRationals:
		return exif.TypeSRational
	case exif.Bytes:
		return exif.TypeUndefined
	case exif.Floats:
		return exif.TypeDouble
	default:
		return exif.TypeASCII
	}
}

func unsignedPayload(t exif.TagType, u exif.Unsigned) (interface{}, error) {
	if len(u) == 0 {
		return nil, errors.New("no components")
	}

	switch t {
	case exif.TypeByte:
		out := make([]byte, len(u))
		for i, n := range u {
			if n < 0 || n > math.MaxUint8 {
				return nil, fmt.Errorf("%d out of BYTE range", n)
			}
			out[i] = byte(n)
		}
		return out, nil
	case exif.TypeShort:
		out := make([]uint16, len(u))
		for i, n := range u {
			if n < 0 || n > math.MaxUint16 {
				return nil, fmt.Errorf("%d out of SHORT range", n)
			}
			out[i] = uint16(n)
		}
		return out, nil
	default:
		out := make([]uint32, len(u))
		for i, n := range u {
			if n < 0 || n > math.MaxUint32 {
				return nil, fmt.Errorf("%d out of LONG range", n)
			}
			out[i] = uint32(n)
		}
		return out, nil
	}
}

// signedPayload encodes signed components as SLONG, the only signed integer
// width the encoder accepts
func signedPayload(sv exif.Signed) ([]int32, error) {
	if len(sv) == 0 {
		return nil, errors.New("no components")
	}

	out := make([]int32, len(sv))
	for i, n := range sv {
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, fmt.Errorf("%d out of SLONG range", n)
		}
		out[i] = int32(n)
	}
	return out, nil
}

func rationalPayload(rs exif.Rationals) ([]exifcommon.Rational, error) {
	out := make([]exifcommon.Rational, len(rs))
	for i, r := range rs {
		if r.Num < 0 || r.Num > math.MaxUint32 || r.Den <= 0 || r.Den > math.MaxUint32 {
			return nil, fmt.Errorf("%s out of RATIONAL range", r)
		}
		out[i] = exifcommon.Rational{Numerator: uint32(r.Num), Denominator: uint32(r.Den)}
	}
	return out, nil
}

func signedRationalPayload(rs exif.SRationals) ([]exifcommon.SignedRational, error) {
	out := make([]exifcommon.SignedRational, len(rs))
	for i, r := range rs {
		if r.Num < math.MinInt32 || r.Num > math.MaxInt32 || r.Den == 0 || r.Den < math.MinInt32 || r.Den > math.MaxInt32 {
			return nil, fmt.Errorf("%s out of SRATIONAL range", r)
		}
		out[i] = exifcommon.SignedRational{Numerator: int32(r.Num), Denominator: int32(r.Den)}
	}
	return out, nil
}
