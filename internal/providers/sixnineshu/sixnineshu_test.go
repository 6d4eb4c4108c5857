package sixnineshu

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brogergvhs/noveld/internal/fetch"
	"github.com/brogergvhs/noveld/internal/providers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bookPage = `<html><body>
<div class="booknav2"><h1>Test Novel</h1><h2>作者：<a href="/a/1">Some Author</a></h2></div>
<div class="navtxt">Line one<br>Line two</div>
<div class="listpage"><select>
  <option value="/book/1/1/">1</option>
  <option value="/book/1/2/">2</option>
</select></div>
</body></html>`

const indexPage = `<html><body>
<div class="info_chapters">
  <ul class="p2"><li><a href="/txt/1/99">latest</a></li></ul>
  <ul class="p2">
    <li><a href="/txt/1/1">Chapter 1</a></li>
    <li><a href="/txt/1/2">Chapter 2</a></li>
  </ul>
</div>
</body></html>`

const chapterPage = `<html><body>
<h2> Chapter 1 </h2>
<div class="novelcontent"><p>Hello</p><p>World</p></div>
</body></html>`

func newServer(t *testing.T) (*httptest.Server, *Scraper) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/book/1.htm", func(w http.ResponseWriter, r *http.Request) { _, _ = io.WriteString(w, bookPage) })
	mux.HandleFunc("/book/1/1/", func(w http.ResponseWriter, r *http.Request) { _, _ = io.WriteString(w, indexPage) })
	mux.HandleFunc("/txt/1/1", func(w http.ResponseWriter, r *http.Request) { _, _ = io.WriteString(w, chapterPage) })
	mux.HandleFunc("/empty", func(w http.ResponseWriter, r *http.Request) { _, _ = io.WriteString(w, "<html></html>") })

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := fetch.NewClient(fetch.Options{RetryDelay: time.Millisecond, MaxRetries: 0})
	require.NoError(t, err)

	return srv, NewWithBase(c, srv.URL)
}

func TestGetNovelInfo(t *testing.T) {
	srv, s := newServer(t)

	info, err := s.GetNovelInfo(context.Background(), srv.URL+"/book/1.htm")

	require.NoError(t, err)
	assert.Equal(t, "Test Novel", info.Title)
	assert.Equal(t, "Some Author", info.Author)
	assert.Equal(t, "Line one\nLine two", info.Description)
	assert.Equal(t, "69shu.net", info.SourceWebsite)
}

func TestGetIndexPages(t *testing.T) {
	srv, s := newServer(t)

	pages, err := s.GetIndexPages(context.Background(), srv.URL+"/book/1.htm")

	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/book/1/1/", srv.URL + "/book/1/2/"}, pages)
}

func TestGetChapterURLsSkipsTeaserList(t *testing.T) {
	srv, s := newServer(t)

	refs, err := s.GetChapterURLs(context.Background(), srv.URL+"/book/1/1/")

	require.NoError(t, err)
	assert.Equal(t, []providers.ChapterRef{
		providers.ChapterRef(srv.URL + "/txt/1/1"),
		providers.ChapterRef(srv.URL + "/txt/1/2"),
	}, refs)
}

func TestGetChapterContent(t *testing.T) {
	srv, s := newServer(t)

	ch, err := s.GetChapterContent(context.Background(), providers.ChapterRef(srv.URL+"/txt/1/1"))

	require.NoError(t, err)
	assert.Equal(t, "Chapter 1", ch.Title)
	assert.Equal(t, "Hello\nWorld", ch.Content)
	assert.False(t, ch.IsAudio())
}

func TestMissingMarkupIsExtractionError(t *testing.T) {
	srv, s := newServer(t)
	ctx := context.Background()

	_, err := s.GetNovelInfo(ctx, srv.URL+"/empty")
	assert.ErrorIs(t, err, providers.ErrExtraction)

	_, err = s.GetIndexPages(ctx, srv.URL+"/empty")
	assert.ErrorIs(t, err, providers.ErrExtraction)

	_, err = s.GetChapterURLs(ctx, srv.URL+"/empty")
	assert.ErrorIs(t, err, providers.ErrExtraction)

	_, err = s.GetChapterContent(ctx, providers.ChapterRef(srv.URL+"/empty"))
	assert.ErrorIs(t, err, providers.ErrExtraction)
}
