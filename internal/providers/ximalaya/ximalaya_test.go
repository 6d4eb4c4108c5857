package ximalaya

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brogergvhs/noveld/internal/fetch"
	"github.com/brogergvhs/noveld/internal/providers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newScraper(t *testing.T, pages *atomic.Int32) (*httptest.Server, *Scraper) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/revision/album/v1/getAlbumDetailInfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42", r.URL.Query().Get("albumId"))
		writeJSON(w, map[string]any{"data": map[string]any{
			"mainInfo":   map[string]any{"albumTitle": "三体", "richIntro": "<p>第一部</p><p>第二部</p>", "cover": "http://img/c.jpg"},
			"anchorInfo": map[string]any{"anchorName": "播音员"},
		}})
	})
	mux.HandleFunc("/revision/album/v1/getTracksList", func(w http.ResponseWriter, r *http.Request) {
		if pages != nil {
			pages.Add(1)
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("pageNum"))
		assert.Equal(t, "30", r.URL.Query().Get("pageSize"))

		var tracks []map[string]any
		switch page {
		case 1:
			tracks = []map[string]any{{"trackId": 11}, {"trackId": 12}}
		case 2:
			tracks = []map[string]any{{"trackId": 13}, {"trackId": 0}}
		}
		writeJSON(w, map[string]any{"data": map[string]any{"tracks": tracks}})
	})
	mux.HandleFunc("/tracks/11.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"play_path": "http://cdn/11.m4a", "title": "第1集", "duration": 600})
	})
	mux.HandleFunc("/tracks/12.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"play_path": "http://cdn/12.m4a"})
	})
	mux.HandleFunc("/tracks/13.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"title": "paid"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := fetch.NewClient(fetch.Options{RetryDelay: time.Millisecond, MaxRetries: 0})
	require.NoError(t, err)

	return srv, NewWithBase(c, srv.URL)
}

func TestNovelInfo(t *testing.T) {
	srv, s := newScraper(t, nil)

	info, err := s.GetNovelInfo(context.Background(), srv.URL+"/album/42/")

	require.NoError(t, err)
	assert.Equal(t, "三体", info.Title)
	assert.Equal(t, "播音员", info.Author)
	assert.Equal(t, "第一部\n第二部", info.Description)
	assert.Equal(t, "http://img/c.jpg", info.CoverURL)
}

func TestChapterURLsPageUntilEmpty(t *testing.T) {
	var pages atomic.Int32
	srv, s := newScraper(t, &pages)

	refs, err := s.GetChapterURLs(context.Background(), srv.URL+"/album/42")

	require.NoError(t, err)
	assert.Equal(t, []providers.ChapterRef{"11", "12", "13"}, refs)
	assert.Equal(t, int32(3), pages.Load())
}

func TestChapterContent(t *testing.T) {
	srv, s := newScraper(t, nil)
	ctx := context.Background()

	ch, err := s.GetChapterContent(ctx, "11")
	require.NoError(t, err)
	assert.Equal(t, "第1集", ch.Title)
	assert.Equal(t, "http://cdn/11.m4a", ch.AudioURL)
	assert.Equal(t, "m4a", ch.Format)
	assert.Equal(t, srv.URL+"/sound/11", ch.URL)

	ch, err = s.GetChapterContent(ctx, "12")
	require.NoError(t, err)
	assert.Equal(t, "Chapter_12", ch.Title)

	_, err = s.GetChapterContent(ctx, "13")
	assert.ErrorIs(t, err, providers.ErrExtraction)
}

func TestAlbumID(t *testing.T) {
	assert.Equal(t, "42", albumID("https://www.ximalaya.com/album/42"))
	assert.Equal(t, "42", albumID("https://www.ximalaya.com/album/42/?from=share"))
	assert.Equal(t, "", albumID(""))
}
