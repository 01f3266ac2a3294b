package metadata

import (
	"bytes"
	"fmt"
	"io"
	"time"

	goexif "github.com/rwcarlsen/goexif/exif"
)

// Summary is the headline metadata of an image
type Summary struct {
	Make     string       `json:"make,omitempty"`
	Model    string       `json:"model,omitempty"`
	DateTime *time.Time   `json:"dateTime,omitempty"`
	GPS      *GPSPosition `json:"gps,omitempty"`
}

// GPSPosition is a decoded position in decimal degrees
type GPSPosition struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude,omitempty"`
}

// Summarize decodes the headline metadata from a reader
func Summarize(r io.Reader) (*Summary, error) {
	x, err := goexif.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode EXIF: %w", err)
	}

	summary := &Summary{}

	if dt, err := x.DateTime(); err == nil {
		summary.DateTime = &dt
	}

	if lat, long, err := x.LatLong(); err == nil {
		summary.GPS = &GPSPosition{
			Latitude:  lat,
			Longitude: long,
		}

		if alt, err := x.Get(goexif.GPSAltitude); err == nil {
			if rational, err := alt.Rat(0); err == nil {
				f, _ := rational.Float64()
				summary.GPS.Altitude = f
			}
		}
	}

	if tag, err := x.Get(goexif.Make); err == nil {
		if str, err := tag.StringVal(); err == nil {
			summary.Make = str
		}
	}

	if tag, err := x.Get(goexif.Model); err == nil {
		if str, err := tag.StringVal(); err == nil {
			summary.Model = str
		}
	}

	return summary, nil
}

// SummarizeBytes decodes the headline metadata of an in-memory image
func SummarizeBytes(image []byte) (*Summary, error) {
	return Summarize(bytes.NewReader(image))
}

// String renders the summary on one line
func (s *Summary) String() string {
	out := fmt.Sprintf("make=%q model=%q", s.Make, s.Model)
	if s.DateTime != nil {
		out += " taken=" + s.DateTime.Format(time.RFC3339)
	}
	if s.GPS != nil {
		out += fmt.Sprintf(" gps=%.6f,%.6f", s.GPS.Latitude, s.GPS.Longitude)
	}
	return out
}
