package editor

import (
	"github.com/bstardust/exif-editor/internal/exif"
)

// EditSet holds the typed edits pending for one editing session. It is
// owned by the caller and passed explicitly to every operation that changes
// it; it is not safe for concurrent use.
type EditSet struct {
	pending map[string]exif.IFD
}

// NewEditSet creates an empty edit set
func NewEditSet() *EditSet {
	return &EditSet{pending: make(map[string]exif.IFD)}
}

// Set records the new value of a tag
func (e *EditSet) Set(category string, tagID uint16, v exif.Value) {
	ifd, ok := e.pending[category]
	if !ok {
		ifd = make(exif.IFD)
		e.pending[category] = ifd
	}
	ifd[tagID] = v
}

// Merge records every tag of ifd, overwriting pending edits of the same tags
func (e *EditSet) Merge(category string, ifd exif.IFD) {
	for id, v := range ifd {
		e.Set(category, id, v)
	}
}

// Get returns the pending value of a tag
func (e *EditSet) Get(category string, tagID uint16) (exif.Value, bool) {
	v, ok := e.pending[category][tagID]
	return v, ok
}

// Len returns the number of pending edits
func (e *EditSet) Len() int {
	n := 0
	for _, ifd := range e.pending {
		n += len(ifd)
	}
	return n
}

// ApplyTo writes every pending edit into dir
func (e *EditSet) ApplyTo(dir *exif.Directory) {
	for category, ifd := range e.pending {
		dir.Merge(category, ifd)
	}
}
