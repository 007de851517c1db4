package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func releaseServer(t *testing.T, status int, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func withVersion(t *testing.T, v string) {
	t.Helper()
	old := AppVersion
	AppVersion = v
	t.Cleanup(func() { AppVersion = old })
}

func TestCheckForUpdates(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		latest   string
		outdated bool
	}{
		{"older", "v1.2.0", "v1.10.0", true},
		{"same", "v1.2.0", "v1.2.0", false},
		{"newer", "v2.0.0", "v1.9.9", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withVersion(t, tt.current)
			url := releaseServer(t, http.StatusOK, `{"tag_name":"`+tt.latest+`"}`)

			u, err := CheckForUpdates(context.Background(), url)
			require.NoError(t, err)
			assert.Equal(t, tt.outdated, u.Outdated)
			assert.Equal(t, tt.latest, u.Latest)
		})
	}
}

func TestCheckForUpdates_Failures(t *testing.T) {
	withVersion(t, "v1.0.0")

	_, err := CheckForUpdates(context.Background(), releaseServer(t, http.StatusNotFound, `{}`))
	assert.Error(t, err)

	_, err = CheckForUpdates(context.Background(), releaseServer(t, http.StatusOK, `{"tag_name":"not a version"}`))
	assert.Error(t, err)
}
