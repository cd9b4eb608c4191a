package entitystore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindOneProject(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody findOneRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"project": {"id": 87}}`))
	}))
	defer srv.Close()

	client, err := New(srv.URL, "tok123", time.Second)
	require.NoError(t, err)
	ref, err := client.FindOneProject(context.Background(), "Task", 5757)
	require.NoError(t, err)

	assert.Equal(t, 87, ref.ID)
	assert.Equal(t, "/api/v1/entity/_find_one", gotPath)
	assert.Equal(t, "Bearer tok123", gotAuth)
	assert.Equal(t, "Task", gotBody.EntityType)
	require.Len(t, gotBody.Filters, 1)
	assert.Equal(t, []any{"id", "is", float64(5757)}, gotBody.Filters[0])
	assert.Equal(t, []string{"project"}, gotBody.Fields)
}

func TestFindOneProjectNoProject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := New(srv.URL, "", time.Second)
	require.NoError(t, err)
	_, err = client.FindOneProject(context.Background(), "Task", 5757)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no owning project")
}

func TestFindOneProjectSiteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	client, err := New(srv.URL, "", time.Second)
	require.NoError(t, err)
	_, err = client.FindOneProject(context.Background(), "Task", 5757)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestNewRejectsMissingSiteURL(t *testing.T) {
	_, err := New("", "", time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "site url is empty")
}

func TestNewRejectsRelativeSiteURL(t *testing.T) {
	_, err := New("tracker.example.com", "", time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be absolute")
}
