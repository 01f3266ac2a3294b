package exif

import (
	"errors"
	"fmt"

	exifv3 "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"

	"github.com/bstardust/exif-editor/pkg/common"
)

// TagType is an EXIF field type as stored in an IFD entry
type TagType uint16

// EXIF field types
const (
	TypeByte      TagType = 1
	TypeASCII     TagType = 2
	TypeShort     TagType = 3
	TypeLong      TagType = 4
	TypeRational  TagType = 5
	TypeSByte     TagType = 6
	TypeUndefined TagType = 7
	TypeSShort    TagType = 8
	TypeSLong     TagType = 9
	TypeSRational TagType = 10
	TypeFloat     TagType = 11
	TypeDouble    TagType = 12
)

func (t TagType) String() string {
	switch t {
	case TypeByte:
		return "BYTE"
	case TypeASCII:
		return "ASCII"
	case TypeShort:
		return "SHORT"
	case TypeLong:
		return "LONG"
	case TypeRational:
		return "RATIONAL"
	case TypeSByte:
		return "SBYTE"
	case TypeUndefined:
		return "UNDEFINED"
	case TypeSShort:
		return "SSHORT"
	case TypeSLong:
		return "SLONG"
	case TypeSRational:
		return "SRATIONAL"
	case TypeFloat:
		return "FLOAT"
	case TypeDouble:
		return "DOUBLE"
	default:
		return fmt.Sprintf("TYPE(%d)", uint16(t))
	}
}

// TagDef describes a registered tag
type TagDef struct {
	ID   uint16
	Name string
	Type TagType
}

// IfdLocation ties a category to its position in the IFD tree
type IfdLocation struct {
	// Identity resolves tag definitions and child IFDs
	Identity *exifcommon.IfdIdentity
	// Path is the fully-qualified IFD path ("IFD1", "IFD/Exif", ...)
	Path string
}

var locations = map[string]IfdLocation{
	CategoryZeroth:  {Identity: exifcommon.IfdStandardIfdIdentity, Path: "IFD"},
	CategoryExif:    {Identity: exifcommon.IfdExifStandardIfdIdentity, Path: "IFD/Exif"},
	CategoryGPS:     {Identity: exifcommon.IfdGpsInfoStandardIfdIdentity, Path: "IFD/GPSInfo"},
	CategoryInterop: {Identity: exifcommon.IfdExifIopStandardIfdIdentity, Path: "IFD/Exif/Iop"},
	CategoryFirst:   {Identity: exifcommon.Ifd1StandardIfdIdentity, Path: "IFD1"},
}

// Location returns the IFD position of a category
func Location(category string) (IfdLocation, bool) {
	loc, ok := locations[category]
	return loc, ok
}

// CategoryForPath maps a fully-qualified IFD path back to its category
func CategoryForPath(path string) (string, bool) {
	for category, loc := range locations {
		if loc.Path == path {
			return category, true
		}
	}
	return "", false
}

// Registry resolves tag definitions per IFD category
type Registry struct {
	index *exifv3.TagIndex
}

// NewRegistry creates a registry loaded with the standard EXIF tags
func NewRegistry() (*Registry, error) {
	ti := exifv3.NewTagIndex()
	if err := exifv3.LoadStandardTags(ti); err != nil {
		return nil, fmt.Errorf("failed to load standard tags: %w", err)
	}
	return &Registry{index: ti}, nil
}

// TagIndex exposes the underlying tag index for EXIF encoding
func (r *Registry) TagIndex() *exifv3.TagIndex {
	return r.index
}

// Lookup returns the definition of a tag in a category
func (r *Registry) Lookup(category string, tagID uint16) (TagDef, error) {
	loc, ok := locations[category]
	if !ok {
		return TagDef{}, fmt.Errorf("%w: category %q", common.ErrUnknownTag, category)
	}

	it, err := r.index.Get(loc.Identity, tagID)
	if err != nil {
		if errors.Is(err, exifv3.ErrTagNotFound) {
			return TagDef{}, fmt.Errorf("%w: %s tag 0x%04x", common.ErrUnknownTag, category, tagID)
		}
		return TagDef{}, fmt.Errorf("failed to look up %s tag 0x%04x: %w", category, tagID, err)
	}

	return TagDef{
		ID:   it.Id,
		Name: it.Name,
		Type: declaredType(it.SupportedTypes),
	}, nil
}

// declaredType picks the widest of the supported types, so SHORT|LONG tags
// are treated as LONG.
func declaredType(supported []exifcommon.TagTypePrimitive) TagType {
	if len(supported) == 0 {
		return TypeUndefined
	}
	t := TagType(supported[0])
	if supported[0] == exifcommon.TypeAsciiNoNul {
		t = TypeASCII
	}
	for _, s := range supported[1:] {
		if TagType(s) == TypeLong && t == TypeShort {
			t = TypeLong
		}
	}
	return t
}
