package location

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bstardust/exif-editor/pkg/common"
)

func fastRetry() RetryConfig {
	rc := DefaultRetryConfig()
	rc.InitialBackoff = time.Millisecond
	rc.MaxBackoff = 5 * time.Millisecond
	return rc
}

func TestIPProvider_Locate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ip":"203.0.113.7","city":"Paris","loc":"48.8566,2.3522"}`))
	}))
	defer srv.Close()

	p := NewIPProvider(srv.URL, time.Second, WithRetry(fastRetry()))
	coords, err := p.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Coordinates{Latitude: 48.8566, Longitude: 2.3522}, coords)
}

func TestIPProvider_RetriesTransientStatus(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"loc":"-33.8688,151.2093"}`))
	}))
	defer srv.Close()

	p := NewIPProvider(srv.URL, time.Second, WithRetry(fastRetry()))
	coords, err := p.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, -33.8688, coords.Latitude)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestIPProvider_PermanentFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := NewIPProvider(srv.URL, time.Second, WithRetry(fastRetry()))
	_, err := p.Locate(context.Background())

	var locErr *common.LocationError
	require.True(t, errors.As(err, &locErr))
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestIPProvider_MissingLoc(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ip":"203.0.113.7","bogon":true}`))
	}))
	defer srv.Close()

	p := NewIPProvider(srv.URL, time.Second, WithRetry(fastRetry()))
	_, err := p.Locate(context.Background())

	var locErr *common.LocationError
	assert.True(t, errors.As(err, &locErr))
}

func TestIPProvider_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := NewIPProvider(url, time.Second, WithRetry(fastRetry()))
	_, err := p.Locate(context.Background())

	var locErr *common.LocationError
	assert.True(t, errors.As(err, &locErr))
}

func TestIPProvider_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewIPProvider("http://127.0.0.1:1", time.Second, WithRetry(fastRetry()))
	_, err := p.Locate(ctx)

	var locErr *common.LocationError
	require.True(t, errors.As(err, &locErr))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStatic_Locate(t *testing.T) {
	coords, err := Static{Latitude: 1.5, Longitude: -2}.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Coordinates{Latitude: 1.5, Longitude: -2}, coords)
}

func TestParseLoc(t *testing.T) {
	tests := []struct {
		loc     string
		want    Coordinates
		wantErr bool
	}{
		{loc: "48.8566,2.3522", want: Coordinates{48.8566, 2.3522}},
		{loc: " -1 , 3 ", want: Coordinates{-1, 3}},
		{loc: "0,0", want: Coordinates{}},
		{loc: "", wantErr: true},
		{loc: "48.8566", wantErr: true},
		{loc: "north,east", wantErr: true},
		{loc: "91,0", wantErr: true},
		{loc: "0,181", wantErr: true},
		{loc: "nan,nan", wantErr: true},
		{loc: "0,NaN", wantErr: true},
		{loc: "+Inf,0", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseLoc(tt.loc)
		if tt.wantErr {
			assert.Error(t, err, tt.loc)
			continue
		}
		require.NoError(t, err, tt.loc)
		assert.Equal(t, tt.want, got)
	}
}

func TestValidate_NotFinite(t *testing.T) {
	assert.Error(t, Validate(Coordinates{Latitude: math.NaN()}))
	assert.Error(t, Validate(Coordinates{Longitude: math.Inf(-1)}))
	assert.NoError(t, Validate(Coordinates{Latitude: -90, Longitude: 180}))
}

func TestRetryConfig_IsRetryable(t *testing.T) {
	rc := DefaultRetryConfig()

	assert.False(t, rc.IsRetryable(nil))
	assert.False(t, rc.IsRetryable(context.Canceled))
	assert.True(t, rc.IsRetryable(&StatusError{Code: 503}))
	assert.False(t, rc.IsRetryable(&StatusError{Code: 404}))
	assert.True(t, rc.IsRetryable(errors.New("read: connection reset by peer")))
	assert.False(t, rc.IsRetryable(errors.New("invalid loc")))
}

func TestRetryWithBackoff_GivesUp(t *testing.T) {
	rc := fastRetry()
	calls := 0

	err := RetryWithBackoff(context.Background(), "op", func() error {
		calls++
		return &StatusError{Code: 500}
	}, rc)

	require.Error(t, err)
	assert.Equal(t, rc.MaxRetries+1, calls)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
}
