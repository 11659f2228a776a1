package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(scenarioPage))
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.Fetch.Fallback = "off"
	cfg.Input.SourcesFile = writeFile(t, "sources.json", `{"sources": [{"url": "`+srv.URL+`"}]}`)

	res, err := Search(context.Background(), cfg, ParseFilter("wypadek", "piłka"), nil)
	require.NoError(t, err)
	assert.Equal(t, []ResultRecord{{Title: "Wypadek drogowy", Link: srv.URL + "/n1", Source: srv.URL}}, res.Records)
}

func TestSearch_MissingRegistryStillRuns(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fetch.Fallback = "off"
	cfg.Input.SourcesFile = filepath.Join(t.TempDir(), "missing.json")

	res, err := Search(context.Background(), cfg, cfg.Filter.Spec(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Empty(t, res.Sources)
}

func TestSearch_BadFallbackMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fetch.Fallback = "bing"

	_, err := Search(context.Background(), cfg, cfg.Filter.Spec(), nil)
	assert.Error(t, err)
}
