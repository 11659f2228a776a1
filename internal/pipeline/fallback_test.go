package pipeline

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const googleNewsPage = `<html><body>
<c-wiz>
  <article><h3><a href="./articles/CBMi1">Wypadek na autostradzie A1</a></h3></article>
  <article><h3><a href="./articles/CBMi2">Pożar hali w Łodzi</a></h3></article>
  <article><h3><a>Bez linku</a></h3></article>
  <article><h4><a href="./articles/other">Not a headline</a></h4></article>
</c-wiz>
</body></html>`

const googleNewsRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>"wypadek" - Google News</title>
<item><title>Wypadek na autostradzie A1 - TVN24</title><link>https://news.google.com/rss/articles/CBMi1?oc=5</link></item>
<item><title>  </title><link>https://news.google.com/rss/articles/blank</link></item>
<item><title>Pożar hali</title><link>https://news.google.com/rss/articles/CBMi2</link></item>
</channel></rss>`

func TestGoogleNewsHTML_Search(t *testing.T) {
	var gotQuery, gotPath string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(googleNewsPage))
	})
	g := NewGoogleNewsHTML(testFetchConfig(h))
	g.Origin = "http://gn.test"

	got, err := g.Search(context.Background(), []string{"wypadek", "pożar"})
	require.NoError(t, err)

	assert.Equal(t, "/search", gotPath)
	assert.Equal(t, "wypadek pożar", gotQuery)
	assert.Equal(t, []ResultRecord{
		{Title: "Wypadek na autostradzie A1", Link: "http://gn.test/articles/CBMi1", Source: "Google News"},
		{Title: "Pożar hali w Łodzi", Link: "http://gn.test/articles/CBMi2", Source: "Google News"},
	}, got)
}

func TestGoogleNewsHTML_Failure(t *testing.T) {
	g := NewGoogleNewsHTML(testFetchConfig(sitesHandler(nil)))
	g.Origin = "http://gn.test"

	got, err := g.Search(context.Background(), []string{"wypadek"})
	assert.Nil(t, got)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusNotFound, fe.Status)
}

func TestGoogleNewsRSS_Search(t *testing.T) {
	var gotPath string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(googleNewsRSS))
	})
	g := NewGoogleNewsRSS(testFetchConfig(h))
	g.Origin = "http://gn.test"

	got, err := g.Search(context.Background(), []string{"wypadek"})
	require.NoError(t, err)

	assert.Equal(t, "/rss/search", gotPath)
	assert.Equal(t, []ResultRecord{
		{Title: "Wypadek na autostradzie A1 - TVN24", Link: "https://news.google.com/rss/articles/CBMi1?oc=5", Source: "Google News"},
		{Title: "Pożar hali", Link: "https://news.google.com/rss/articles/CBMi2", Source: "Google News"},
	}, got)
}

func TestNewSearcher(t *testing.T) {
	cfg := DefaultFetchConfig()

	s, err := NewSearcher("", cfg)
	require.NoError(t, err)
	assert.IsType(t, &GoogleNewsHTML{}, s)

	s, err = NewSearcher("RSS", cfg)
	require.NoError(t, err)
	assert.IsType(t, &GoogleNewsRSS{}, s)

	s, err = NewSearcher("off", cfg)
	require.NoError(t, err)
	recs, err := s.Search(context.Background(), []string{"x"})
	assert.NoError(t, err)
	assert.Empty(t, recs)

	_, err = NewSearcher("bing", cfg)
	assert.Error(t, err)
}
