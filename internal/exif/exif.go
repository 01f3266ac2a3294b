// Package exif holds the in-memory EXIF directory structure together with
// the rules that turn edited text back into typed tag values.
package exif

import (
	"sort"
)

// IFD category names
const (
	CategoryZeroth    = "0th"
	CategoryExif      = "Exif"
	CategoryGPS       = "GPS"
	CategoryInterop   = "Interop"
	CategoryFirst     = "1st"
	CategoryThumbnail = "thumbnail"
)

// Categories lists the tag-bearing IFD categories in display order
var Categories = []string{
	CategoryZeroth,
	CategoryExif,
	CategoryGPS,
	CategoryInterop,
	CategoryFirst,
}

// IsCategory reports whether name is a tag-bearing IFD category
func IsCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// IFD maps tag identifiers to values
type IFD map[uint16]Value

// SortedTags returns the tag identifiers of the IFD in ascending order
func (ifd IFD) SortedTags() []uint16 {
	ids := make([]uint16, 0, len(ifd))
	for id := range ifd {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Directory represents the EXIF metadata of one image
type Directory struct {
	IFDs      map[string]IFD
	Thumbnail []byte
}

// NewDirectory creates an empty directory
func NewDirectory() *Directory {
	return &Directory{
		IFDs: make(map[string]IFD),
	}
}

// IsEmpty reports whether the directory holds no tags and no thumbnail
func (d *Directory) IsEmpty() bool {
	for _, ifd := range d.IFDs {
		if len(ifd) > 0 {
			return false
		}
	}
	return len(d.Thumbnail) == 0
}

// Get returns the value of a tag
func (d *Directory) Get(category string, tagID uint16) (Value, bool) {
	ifd, ok := d.IFDs[category]
	if !ok {
		return nil, false
	}
	v, ok := ifd[tagID]
	return v, ok
}

// Set stores the value of a tag, creating the category if needed
func (d *Directory) Set(category string, tagID uint16, v Value) {
	ifd, ok := d.IFDs[category]
	if !ok {
		ifd = make(IFD)
		d.IFDs[category] = ifd
	}
	ifd[tagID] = v
}

// Merge copies every tag of ifd into the category, overwriting existing tags
func (d *Directory) Merge(category string, ifd IFD) {
	for id, v := range ifd {
		d.Set(category, id, v)
	}
}

// Clone returns a copy of the directory that can be mutated independently.
// Values are shared; they are never modified in place.
func (d *Directory) Clone() *Directory {
	out := NewDirectory()
	for category, ifd := range d.IFDs {
		cp := make(IFD, len(ifd))
		for id, v := range ifd {
			cp[id] = v
		}
		out.IFDs[category] = cp
	}
	if d.Thumbnail != nil {
		out.Thumbnail = append([]byte(nil), d.Thumbnail...)
	}
	return out
}
