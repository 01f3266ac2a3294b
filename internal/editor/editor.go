// Package editor runs an EXIF editing session: it renders the tags of an
// image as text fields, turns submitted text back into typed values and
// produces the edited image.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bstardust/exif-editor/internal/exif"
	"github.com/bstardust/exif-editor/internal/location"
	"github.com/bstardust/exif-editor/internal/logger"
	"github.com/bstardust/exif-editor/pkg/models"
)

// MIMEType is the content type of every edited image
const MIMEType = "image/jpeg"

// ErrInvalidKey is returned for a field key that does not name a tag
var ErrInvalidKey = errors.New("invalid field key")

// MetadataStore reads and writes the EXIF directory of an image
type MetadataStore interface {
	Read(image []byte) (*exif.Directory, error)
	Write(image []byte, dir *exif.Directory) ([]byte, error)
}

// Form is the rendered state of an image's metadata
type Form struct {
	Fields    []models.Field
	Directory *exif.Directory
	Notices   []string
}

// HasExif reports whether the image carried any EXIF metadata
func (f *Form) HasExif() bool {
	return f.Directory != nil && !f.Directory.IsEmpty()
}

// FieldResult is the outcome of converting one submitted field. Err is a
// *common.MalformedValueError or wraps ErrInvalidKey; it never stops the
// other fields from being processed.
type FieldResult struct {
	Key      string
	Category string
	TagID    uint16
	Value    exif.Value
	Changed  bool
	Err      error
}

// Result is the downloadable artifact of a session
type Result struct {
	Image     []byte
	Filename  string
	MIMEType  string
	Fields    []FieldResult
	Directory *exif.Directory
}

// Errors returns the field results that failed
func (r *Result) Errors() []FieldResult {
	var out []FieldResult
	for _, f := range r.Fields {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// Editor ties the metadata store, the tag coercer and the location provider
// together. It holds no per-session state.
type Editor struct {
	store    MetadataStore
	coercer  *exif.Coercer
	locator  location.Provider
	filename string
}

// New creates an editor. filename is the name offered for edited images.
func New(store MetadataStore, coercer *exif.Coercer, locator location.Provider, filename string) *Editor {
	return &Editor{
		store:    store,
		coercer:  coercer,
		locator:  locator,
		filename: filename,
	}
}

// FormatKey returns the field key of a tag, e.g. "0th_271"
func FormatKey(category string, tagID uint16) string {
	return category + "_" + strconv.FormatUint(uint64(tagID), 10)
}

// ParseKey splits a field key into its category and tag id
func ParseKey(key string) (string, uint16, error) {
	i := strings.LastIndex(key, "_")
	if i <= 0 {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	category := key[:i]
	if !exif.IsCategory(category) {
		return "", 0, fmt.Errorf("%w: %q: unknown category %q", ErrInvalidKey, key, category)
	}

	id, err := strconv.ParseUint(key[i+1:], 10, 16)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q: %v", ErrInvalidKey, key, err)
	}
	return category, uint16(id), nil
}

// ReadAndRender reads the metadata of an image and renders one field per
// tag, ordered by category then tag id
func (e *Editor) ReadAndRender(image []byte) (*Form, error) {
	dir, err := e.store.Read(image)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	form := &Form{
		Fields:    e.Render(dir),
		Directory: dir,
	}

	if dir.IsEmpty() {
		form.Notices = append(form.Notices, "This image contains no EXIF metadata.")
	}
	if len(dir.Thumbnail) > 0 {
		form.Notices = append(form.Notices,
			fmt.Sprintf("The embedded %d-byte thumbnail is not editable and is kept as is.", len(dir.Thumbnail)))
	}

	logger.Debug("Rendered %d fields", len(form.Fields))
	return form, nil
}

// Render returns the fields of a directory in display order
func (e *Editor) Render(dir *exif.Directory) []models.Field {
	var fields []models.Field
	registry := e.coercer.Registry()

	for _, category := range exif.Categories {
		ifd := dir.IFDs[category]
		for _, id := range ifd.SortedTags() {
			name := fmt.Sprintf("Tag 0x%04x", id)
			typeName := ""
			if def, err := registry.Lookup(category, id); err == nil {
				name = def.Name
				typeName = def.Type.String()
			}
			fields = append(fields, models.NewField(FormatKey(category, id), category, id, name, typeName, ifd[id].String()))
		}
	}
	return fields
}

// Submit converts submitted field text into typed values and records them in
// edits. Text that matches the rendering of the value in dir, or of the
// pending edit for that tag, is not a change: any pending edit is kept. A
// field that fails to convert is reported in its result and leaves edits
// untouched for that tag.
func (e *Editor) Submit(dir *exif.Directory, edits *EditSet, submitted map[string]string) []FieldResult {
	keys := make([]string, 0, len(submitted))
	for k := range submitted {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	results := make([]FieldResult, 0, len(keys))
	for _, key := range keys {
		text := submitted[key]

		category, tagID, err := ParseKey(key)
		if err != nil {
			logger.Warn("Ignoring field %s: %v", key, err)
			results = append(results, FieldResult{Key: key, Err: err})
			continue
		}

		res := FieldResult{Key: key, Category: category, TagID: tagID}

		original, inDir := dir.Get(category, tagID)
		pending, inEdits := edits.Get(category, tagID)
		if (inDir && original.String() == text) || (inEdits && pending.String() == text) {
			res.Value = original
			if inEdits {
				res.Value = pending
			}
			results = append(results, res)
			continue
		}

		v, err := e.coercer.Convert(text, tagID, category)
		if err != nil {
			logger.Warn("%v", err)
			res.Value = v
			res.Err = err
			results = append(results, res)
			continue
		}

		res.Value = v
		res.Changed = true
		edits.Set(category, tagID, v)
		results = append(results, res)
	}

	return results
}

// UpdateGPS looks up the current location and merges the encoded GPS tags
// into edits. When the lookup fails, edits is left unchanged and the
// *common.LocationError is returned.
func (e *Editor) UpdateGPS(ctx context.Context, edits *EditSet) (*exif.GPSTagSet, location.Coordinates, error) {
	if e.locator == nil {
		return nil, location.Coordinates{}, errors.New("no location provider configured")
	}

	coords, err := e.locator.Locate(ctx)
	if err != nil {
		return nil, location.Coordinates{}, err
	}

	gps := exif.EncodeGPS(coords.Latitude, coords.Longitude)
	edits.Merge(exif.CategoryGPS, gps.IFD())

	logger.Info("GPS tags set from location %s", coords)
	return &gps, coords, nil
}

// CoerceAndWrite converts the submitted fields, applies edits over the
// image's current metadata and encodes the edited image. A serialization
// failure aborts and no artifact is produced.
func (e *Editor) CoerceAndWrite(image []byte, edits *EditSet, submitted map[string]string) (*Result, error) {
	dir, err := e.store.Read(image)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	fields := e.Submit(dir, edits, submitted)

	edited := dir.Clone()
	edits.ApplyTo(edited)

	out, err := e.store.Write(image, edited)
	if err != nil {
		logger.Error("Failed to write edited image: %v", err)
		return nil, err
	}

	logger.Info("Wrote edited image with %d pending edits (%d bytes)", edits.Len(), len(out))

	return &Result{
		Image:     out,
		Filename:  e.filename,
		MIMEType:  MIMEType,
		Fields:    fields,
		Directory: edited,
	}, nil
}
