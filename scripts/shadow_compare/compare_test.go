package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTargetsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("targets:\n  - path: health\n  - method: post\n    path: /logout\n    mode: shape\n"), 0o600))

	targets, err := loadTargets(path)
	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, "GET", targets[0].Method)
	assert.Equal(t, "/health", targets[0].Path)
	assert.Equal(t, modeExact, targets[0].Mode)
	assert.Equal(t, "GET /health", targets[0].Name)
	assert.Equal(t, "POST", targets[1].Method)

	require.NoError(t, os.WriteFile(path, []byte("targets: []\n"), 0o600))
	_, err = loadTargets(path)
	assert.Error(t, err)
}

func TestBodiesMatch(t *testing.T) {
	exact := target{Mode: modeExact, Ignore: []string{"code"}}
	assert.True(t, bodiesMatch([]byte(`{"detail":"Invalid status","code":"VALIDATION_ERROR"}`), []byte(`{"detail":"Invalid status"}`), exact))
	assert.True(t, bodiesMatch([]byte(`{"n":1}`), []byte(`{"n":1.0}`), exact))
	assert.False(t, bodiesMatch([]byte(`{"detail":"a"}`), []byte(`{"detail":"b"}`), exact))
	assert.False(t, bodiesMatch([]byte(`not json`), []byte(`{}`), exact))

	shaped := target{Mode: modeShape}
	assert.True(t, bodiesMatch(
		[]byte(`{"reports":[{"id":"a","tags":"Road"}]}`),
		[]byte(`{"reports":[{"id":"b","tags":"Water"},{"id":"c","tags":"Road"}]}`),
		shaped,
	))
	assert.False(t, bodiesMatch([]byte(`{"reports":[{"id":"a"}]}`), []byte(`{"reports":[{"id":1}]}`), shaped))
}

func TestCompareSendsTokenOnlyForAuthTargets(t *testing.T) {
	handler := func(token string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/my-reports" && r.Header.Get("Authorization") != "Bearer "+token {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"message":"StreetVoice Backend is running!"}`))
		}
	}
	goSrv := httptest.NewServer(handler("go"))
	defer goSrv.Close()
	legacySrv := httptest.NewServer(handler("legacy"))
	defer legacySrv.Close()

	c := &comparer{
		client: goSrv.Client(),
		goAPI:  backend{base: goSrv.URL, token: "go"},
		legacy: backend{base: legacySrv.URL, token: "legacy"},
	}

	res := c.compare(context.Background(), target{Name: "mine", Method: "GET", Path: "/my-reports", Auth: true, Critical: true, Mode: modeExact})
	require.NoError(t, res.Error)
	assert.True(t, res.StatusMatch)
	assert.True(t, res.BodyMatch)
	assert.False(t, res.breaking())

	c.legacy.token = "stale"
	res = c.compare(context.Background(), target{Name: "mine", Method: "GET", Path: "/my-reports", Auth: true, Critical: true, Mode: modeExact})
	assert.False(t, res.StatusMatch)
	assert.True(t, res.breaking())

	var out bytes.Buffer
	printReport(&out, []comparison{res})
	assert.Contains(t, out.String(), "[DIFF] mine")
}
