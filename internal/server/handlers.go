package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/bstardust/exif-editor/internal/editor"
	"github.com/bstardust/exif-editor/internal/metadata"
	"github.com/bstardust/exif-editor/pkg/common"
	"github.com/bstardust/exif-editor/pkg/models"
)

// form names that are not tag fields
const (
	fieldImage  = "image"
	fieldAction = "action"
)

// save actions
const (
	actionGPS  = "gps"
	actionSave = "save"
)

type pageData struct {
	Groups    []models.FieldGroup
	Notices   []string
	Errors    []string
	ImageData string
	Preview   template.URL
	HasImage  bool
	HasFields bool
	Location  string
	Summary   *metadata.Summary
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.page.Execute(w, data); err != nil {
		requestLogger(r).Error().Err(err).Msg("Failed to render page")
	}
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.render(w, r, status, pageData{Errors: []string{message}})
}

// imagePage prepares the page for an image and its fields
func imagePage(image []byte, fields []models.Field) pageData {
	encoded := base64.StdEncoding.EncodeToString(image)
	data := pageData{
		Groups:    models.GroupFields(fields),
		ImageData: encoded,
		Preview:   template.URL("data:image/jpeg;base64," + encoded),
		HasImage:  true,
		HasFields: len(fields) > 0,
	}
	if summary, err := metadata.SummarizeBytes(image); err == nil {
		data.Summary = summary
	}
	return data
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, pageData{})
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Could not read the upload: "+err.Error())
		return
	}

	file, header, err := r.FormFile(fieldImage)
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Choose a JPEG image to edit.")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Could not read the upload: "+err.Error())
		return
	}

	form, err := s.editor.ReadAndRender(image)
	if err != nil {
		requestLogger(r).Warn().Err(err).Str("file", header.Filename).Msg("Rejected upload")
		s.renderError(w, r, http.StatusUnprocessableEntity, "The file is not a readable JPEG image: "+err.Error())
		return
	}

	requestLogger(r).Info().
		Str("file", header.Filename).
		Int("bytes", len(image)).
		Int("fields", len(form.Fields)).
		Msg("Opened image")

	data := imagePage(image, form.Fields)
	data.Notices = form.Notices
	s.render(w, r, http.StatusOK, data)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 2*s.cfg.MaxUploadBytes+(1<<20))
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Could not read the form: "+err.Error())
		return
	}

	image, err := base64.StdEncoding.DecodeString(r.PostForm.Get(fieldImage))
	if err != nil || len(image) == 0 {
		s.renderError(w, r, http.StatusBadRequest, "The form does not carry an image. Open the image again.")
		return
	}

	submitted := make(map[string]string)
	for key, values := range r.PostForm {
		if key == fieldImage || key == fieldAction || len(values) == 0 {
			continue
		}
		submitted[key] = values[0]
	}

	switch action := r.PostForm.Get(fieldAction); action {
	case actionGPS:
		s.updateGPS(w, r, image, submitted)
	case actionSave, "":
		s.save(w, r, image, submitted)
	default:
		s.renderError(w, r, http.StatusBadRequest, fmt.Sprintf("Unknown action %q.", action))
	}
}

// updateGPS re-renders the form with the submitted edits and the GPS tags of
// the current location merged in
func (s *Server) updateGPS(w http.ResponseWriter, r *http.Request, image []byte, submitted map[string]string) {
	form, err := s.editor.ReadAndRender(image)
	if err != nil {
		s.renderError(w, r, http.StatusUnprocessableEntity, "The file is not a readable JPEG image: "+err.Error())
		return
	}

	edits := editor.NewEditSet()
	results := s.editor.Submit(form.Directory, edits, submitted)

	gps, coords, err := s.editor.UpdateGPS(r.Context(), edits)
	if err != nil {
		requestLogger(r).Warn().Err(err).Msg("GPS update failed")
		data := imagePage(image, withSubmitted(form.Fields, submitted))
		data.Errors = append(fieldErrors(results), locationMessage(err))
		s.render(w, r, http.StatusOK, data)
		return
	}

	// Fields are rendered from the merged state; fields that failed to
	// convert keep the text the user typed.
	merged := form.Directory.Clone()
	edits.ApplyTo(merged)
	fields := withSubmitted(s.editor.Render(merged), failedText(results, submitted))

	data := imagePage(image, fields)
	data.Location = fmt.Sprintf("latitude %s, longitude %s", strconv.FormatFloat(coords.Latitude, 'f', -1, 64), strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	data.Notices = []string{fmt.Sprintf("GPS tags updated in the form (%s, %s).", gps.LatitudeRef, gps.LongitudeRef)}
	data.Errors = fieldErrors(results)
	s.render(w, r, http.StatusOK, data)
}

func (s *Server) save(w http.ResponseWriter, r *http.Request, image []byte, submitted map[string]string) {
	result, err := s.editor.CoerceAndWrite(image, editor.NewEditSet(), submitted)
	if err != nil {
		requestLogger(r).Error().Err(err).Msg("Save failed")

		var fields []models.Field
		if form, rerr := s.editor.ReadAndRender(image); rerr == nil {
			fields = withSubmitted(form.Fields, submitted)
		}
		data := imagePage(image, fields)
		data.Errors = []string{saveMessage(err)}
		s.render(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	for _, f := range result.Errors() {
		requestLogger(r).Warn().Str("field", f.Key).Err(f.Err).Msg("Field kept its previous value")
	}

	w.Header().Set("Content-Type", result.MIMEType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": result.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Image)))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Image)
}

// withSubmitted replaces rendered values with the submitted text
func withSubmitted(fields []models.Field, submitted map[string]string) []models.Field {
	out := make([]models.Field, len(fields))
	for i, f := range fields {
		if text, ok := submitted[f.Key]; ok {
			f.Value = text
		}
		out[i] = f
	}
	return out
}

func failedText(results []editor.FieldResult, submitted map[string]string) map[string]string {
	out := make(map[string]string)
	for _, res := range results {
		if res.Err != nil {
			out[res.Key] = submitted[res.Key]
		}
	}
	return out
}

func fieldErrors(results []editor.FieldResult) []string {
	var out []string
	for _, res := range results {
		if res.Err != nil {
			out = append(out, res.Err.Error())
		}
	}
	return out
}

func locationMessage(err error) string {
	var locErr *common.LocationError
	if errors.As(err, &locErr) {
		return "Unable to retrieve the current GPS coordinates. " + locErr.Error()
	}
	return "Unable to retrieve the current GPS coordinates: " + err.Error()
}

func saveMessage(err error) string {
	var serr *common.SerializationError
	if errors.As(err, &serr) {
		return "Error while saving the image with the edited metadata: " + serr.Error()
	}
	return "Error while saving the image: " + err.Error()
}
