package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bstardust/exif-editor/internal/exif"
)

func dms(rs [3]exif.Rational) float64 {
	var d float64
	for i, r := range rs {
		d += float64(r.Num) / float64(r.Den) / []float64{1, 60, 3600}[i]
	}
	return d
}

func TestSummarize_WrittenImage(t *testing.T) {
	store := newTestStore(t)

	out, err := store.Write(newJPEG(t), sampleDirectory())
	require.NoError(t, err)

	summary, err := SummarizeBytes(out)
	require.NoError(t, err)

	assert.Equal(t, "Acme", summary.Make)
	assert.Equal(t, "Pinhole 1", summary.Model)
	require.NotNil(t, summary.DateTime)
	assert.Equal(t, "2024:05:01 10:20:30", summary.DateTime.Format("2006:01:02 15:04:05"))

	gps := exif.EncodeGPS(48.8566, 2.3522)
	require.NotNil(t, summary.GPS)
	assert.InDelta(t, dms(gps.Latitude), summary.GPS.Latitude, 1e-6)
	assert.InDelta(t, dms(gps.Longitude), summary.GPS.Longitude, 1e-6)
	assert.Contains(t, summary.String(), `make="Acme"`)
}

func TestSummarize_NoExif(t *testing.T) {
	_, err := SummarizeBytes(newJPEG(t))
	assert.Error(t, err)
}
