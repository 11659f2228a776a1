package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"news-relay/internal/pipeline"
)

const page = `<html><body>
<a href="/n1">Wypadek drogowy</a>
<a href="/n2">Pożar kamienicy</a>
<a href="/s1">Wypadek na meczu, piłka nożna</a>
</body></html>`

func setupEnv(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)

	path := filepath.Join(t.TempDir(), "sources.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sources":[{"url":"`+srv.URL+`"}]}`), 0o600))

	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SOURCES_FILE", path)
	t.Setenv("FALLBACK_MODE", "off")
	t.Setenv("KEYWORDS", "")
	t.Setenv("EXCLUDE_WORDS", "")
	t.Setenv("NEWS_RELAY_PASSWORD_HASH", "")
	t.Setenv("NOTION_TOKEN", "")
	return srv.URL
}

func TestHandler_ReturnsReport(t *testing.T) {
	base := setupEnv(t)

	resp, err := Handler(context.Background(), Event{Keywords: "wypadek,pożar", Exclude: "piłka"})
	require.NoError(t, err)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 2, resp.Found)
	assert.Empty(t, resp.FailedSources)
	assert.Equal(t, "polish_news_report.xlsx", resp.FileName)
	assert.Equal(t, pipeline.ReportMIMEType, resp.MIMEType)

	data, err := base64.StdEncoding.DecodeString(resp.Report)
	require.NoError(t, err)
	got, err := pipeline.ReadReport(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []pipeline.ResultRecord{
		{Title: "Wypadek drogowy", Link: base + "/n1", Source: base},
		{Title: "Pożar kamienicy", Link: base + "/n2", Source: base},
	}, got)
}

func TestHandler_NoMatches(t *testing.T) {
	setupEnv(t)

	resp, err := Handler(context.Background(), Event{Keywords: "trzęsienie"})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Zero(t, resp.Found)
	assert.Equal(t, "No matching news found", resp.Message)
	assert.Empty(t, resp.Report)
}

func TestHandler_PasswordGate(t *testing.T) {
	setupEnv(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("tajne"), bcrypt.MinCost)
	require.NoError(t, err)
	t.Setenv("NEWS_RELAY_PASSWORD_HASH", string(hash))

	resp, err := Handler(context.Background(), Event{Keywords: "wypadek", Password: "zle"})
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
	assert.Zero(t, resp.Found)

	resp, err = Handler(context.Background(), Event{Keywords: "wypadek", Password: "tajne"})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 1, resp.Found)
}

func TestFilterFromEvent(t *testing.T) {
	def := pipeline.FilterConfig{Keywords: pipeline.DefaultKeywords, Exclude: pipeline.DefaultExclude}

	f := filterFromEvent(Event{}, def)
	assert.Equal(t, []string{"wypadek", "morderstwo"}, f.Keywords)
	assert.Equal(t, []string{"sport", "piłka"}, f.ExcludeWords)

	f = filterFromEvent(Event{Keywords: "napad"}, def)
	assert.Equal(t, []string{"napad"}, f.Keywords)
	assert.Equal(t, []string{"sport", "piłka"}, f.ExcludeWords)
}
