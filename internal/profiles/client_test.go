package profiles

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetReturnsProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/internal/users/2", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":2,"full_name":"bob","avatar_url":"","status":"online"}`))
	}))
	defer srv.Close()

	p, err := NewHTTPDirectory(srv.URL, nil).Get(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, 2, p.ID)
	assert.Equal(t, "bob", p.FullName)
}

func TestGetMapsMissingUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewHTTPDirectory(srv.URL, nil).Get(context.Background(), 99)

	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestListOthersPassesExcludeParam(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/internal/users", r.URL.Path)
		require.Equal(t, "1", r.URL.Query().Get("exclude"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":2},{"id":3}]`))
	}))
	defer srv.Close()

	users, err := NewHTTPDirectory(srv.URL, nil).ListOthers(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, 2, users[0].ID)
}

func TestGetSurfacesUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTTPDirectory(srv.URL, nil).Get(context.Background(), 2)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)
}
