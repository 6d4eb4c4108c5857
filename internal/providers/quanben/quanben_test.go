package quanben

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

func serve(t *testing.T) (*httptest.Server, *Scraper) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/n/long-road/list.html", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<ul>
			<li><a href="/n/long-road/1.html">1</a></li>
			<li><a href="/n/long-road/3.html">3</a></li>
		</ul>`)
	})
	mux.HandleFunc("/n/odd/list.html", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<ul>
			<li><a href="/n/odd/intro.html">intro</a></li>
			<li><a href="/other/x.html">x</a></li>
			<li><a href="/n/odd/end.html">end</a></li>
		</ul>`)
	})
	mux.HandleFunc("/n/long-road/1.html", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<h1 class="headline">漫漫长路：第一章 出发</h1>
			<div class="articlebody"><p>第一段</p><p>第二段</p></div>`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := fetch.NewClient(fetch.Options{RetryDelay: time.Millisecond, MaxRetries: 0})
	require.NoError(t, err)

	return srv, NewWithBase(c, srv.URL)
}

func TestChapterURLsExpandedFromLastLink(t *testing.T) {
	srv, s := serve(t)

	refs, err := s.GetChapterURLs(context.Background(), srv.URL+"/n/long-road/list.html")

	require.NoError(t, err)
	assert.Equal(t, []providers.ChapterRef{
		providers.ChapterRef(srv.URL + "/n/long-road/1.html"),
		providers.ChapterRef(srv.URL + "/n/long-road/2.html"),
		providers.ChapterRef(srv.URL + "/n/long-road/3.html"),
	}, refs)
}

func TestChapterURLsFallBackToLinks(t *testing.T) {
	srv, s := serve(t)

	refs, err := s.GetChapterURLs(context.Background(), srv.URL+"/n/odd/list.html")

	require.NoError(t, err)
	assert.Equal(t, []providers.ChapterRef{
		providers.ChapterRef(srv.URL + "/n/odd/intro.html"),
		providers.ChapterRef(srv.URL + "/n/odd/end.html"),
	}, refs)
}

func TestChapterURLsNeedSlug(t *testing.T) {
	_, s := serve(t)

	_, err := s.GetChapterURLs(context.Background(), "https://www.quanben.io/list.html")
	assert.ErrorIs(t, err, providers.ErrExtraction)
}

func TestNovelInfoUsesFirstChapterHeading(t *testing.T) {
	srv, s := serve(t)

	info, err := s.GetNovelInfo(context.Background(), srv.URL+"/n/long-road/list.html")

	require.NoError(t, err)
	assert.Equal(t, "漫漫长路", info.Title)
	assert.Equal(t, "Unknown Author", info.Author)
}

func TestChapterContent(t *testing.T) {
	srv, s := serve(t)

	ch, err := s.GetChapterContent(context.Background(), providers.ChapterRef(srv.URL+"/n/long-road/1.html"))

	require.NoError(t, err)
	assert.Equal(t, "漫漫长路：第一章 出发", ch.Title)
	assert.Equal(t, "第一段\n第二段", ch.Content)
}

func TestTitleHelpers(t *testing.T) {
	assert.Equal(t, "Long Road", titleFromSlug("https://www.quanben.io/n/long-road/list.html"))
	assert.Equal(t, "", titleFromSlug("https://www.quanben.io/n/long-road/"))
	assert.Equal(t, "Book", titleFromHeading("Book: Chapter 1"))
	assert.Equal(t, "", titleFromHeading("序章"))
	assert.Equal(t, "long-road", novelSlug("https://x/n/long-road/list.html"))
}
