package client

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/streetvoice-api/internal/models"
)

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := New(Options{BaseURL: "localhost:8000"})
	assert.Error(t, err)
}

func TestSubmitReportSendsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/report-issue", r.URL.Path)
		file, header, err := r.FormFile("image")
		if !assert.NoError(t, err) {
			return
		}
		data, _ := io.ReadAll(file)
		assert.Equal(t, pngBytes, data)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		assert.Equal(t, "pothole.png", header.Filename)
		assert.Equal(t, "Main St", r.FormValue("location"))
		assert.Equal(t, "Road", r.FormValue("tags"))
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok", "image_url": "/uploads/reports/a.jpg", "id": "r-9"})
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL, Credentials: StaticToken("t")})
	require.NoError(t, err)
	res, err := c.SubmitReport(context.Background(), NewReport{Image: pngFile(), Location: "Main St", Tag: models.TagRoad})
	require.NoError(t, err)
	assert.Equal(t, "r-9", res.ID)
}

func TestLoginGoogleSendsFormToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Equal(t, "id-token", r.PostFormValue("token"))
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]interface{}{"access_token": "jwt", "token_type": "bearer", "profile_complete": false})
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL})
	require.NoError(t, err)
	res, err := c.LoginGoogle(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, "jwt", res.AccessToken)
	assert.Equal(t, PathProfile, LandingPath(res))
}

func TestReverseGeocode(t *testing.T) {
	empty := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "-6.2", r.URL.Query().Get("lat"))
		assert.Equal(t, "106.8", r.URL.Query().Get("lng"))
		if empty {
			writeJSON(w, http.StatusOK, map[string]interface{}{"results": []interface{}{}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"results": []map[string]string{{"formatted": "Jakarta"}}})
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL})
	require.NoError(t, err)

	label, err := c.ReverseGeocode(context.Background(), -6.2, 106.8)
	require.NoError(t, err)
	assert.Equal(t, "Jakarta", label)

	empty = true
	label, err = c.ReverseGeocode(context.Background(), -6.2, 106.8)
	require.NoError(t, err)
	assert.Equal(t, NoLocationFound, label)
}

func TestProxyTransportFailureKeepsErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch location"})
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = c.ReverseGeocode(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, "Failed to fetch location", DetailOr(err, ""))
}

func TestClientTimeoutIsTransport(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := New(Options{BaseURL: srv.URL, Credentials: StaticToken("t"), Timeout: 50 * time.Millisecond})
	require.NoError(t, err)
	_, err = c.DashboardStats(context.Background())
	assert.ErrorIs(t, err, ErrTransport)
}

func TestClosedServerIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: url, Credentials: StaticToken("t")})
	require.NoError(t, err)
	err = c.DeleteReport(context.Background(), "r-1")
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, ErrTransport.Detail, DetailOr(err, ""))
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestMultipartFieldsReportWriteErrors(t *testing.T) {
	body := &multipartBody{writer: multipart.NewWriter(brokenWriter{})}
	assert.EqualError(t, body.fields("location", "Main St"), "disk full")

	ok := newMultipart()
	require.NoError(t, ok.fields("a", "1", "b", "2"))
	assert.Contains(t, ok.buf.String(), `name="b"`)
}
