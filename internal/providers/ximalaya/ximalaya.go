// Package ximalaya implements providers.Strategy for ximalaya.com albums using
// the site's JSON endpoints. Chapter refs are track ids.
package ximalaya

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/brogergvhs/noveld/internal/fetch"
	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/providers/htmltext"
)

const (
	Name     = "ximalaya"
	BaseURL  = "https://www.ximalaya.com"
	PageSize = 30
)

type albumDetail struct {
	Data struct {
		MainInfo struct {
			AlbumTitle string `json:"albumTitle"`
			RichIntro  string `json:"richIntro"`
			Cover      string `json:"cover"`
		} `json:"mainInfo"`
		AnchorInfo struct {
			AnchorName string `json:"anchorName"`
		} `json:"anchorInfo"`
	} `json:"data"`
}

type trackList struct {
	Data struct {
		Tracks []struct {
			TrackID int64 `json:"trackId"`
		} `json:"tracks"`
	} `json:"data"`
}

type trackInfo struct {
	PlayPath string `json:"play_path"`
	Title    string `json:"title"`
}

type Scraper struct {
	client  *fetch.Client
	baseURL string
}

func New(c *fetch.Client) *Scraper {
	return NewWithBase(c, BaseURL)
}

func NewWithBase(c *fetch.Client, base string) *Scraper {
	return &Scraper{client: c, baseURL: strings.TrimSuffix(base, "/")}
}

func (s *Scraper) GetSourceInfo() providers.SourceInfo {
	return providers.SourceInfo{
		Name:     "Ximalaya",
		URL:      s.baseURL,
		Language: "Chinese",
		Type:     providers.TypeAudio,
	}
}

func (s *Scraper) GetNovelInfo(ctx context.Context, albumURL string) (providers.NovelInfo, error) {
	id := albumID(albumURL)
	if id == "" {
		return providers.NovelInfo{}, providers.ExtractionError("album id", albumURL)
	}

	var detail albumDetail
	api := fmt.Sprintf("%s/revision/album/v1/getAlbumDetailInfo?albumId=%s", s.baseURL, url.QueryEscape(id))
	if err := s.client.JSON(ctx, api, &detail); err != nil {
		return providers.NovelInfo{}, err
	}

	album := detail.Data.MainInfo
	title := orDefault(album.AlbumTitle, "Unknown Title")
	author := orDefault(detail.Data.AnchorInfo.AnchorName, "Unknown Author")

	desc := album.RichIntro
	if strings.Contains(desc, "<") {
		desc = strings.TrimSpace(htmltext.FromHTML(desc))
	}

	return providers.NovelInfo{
		Title:         title,
		Author:        author,
		Description:   desc,
		SourceURL:     albumURL,
		SourceWebsite: "Ximalaya",
		CoverURL:      album.Cover,
	}, nil
}

// GetIndexPages returns the album URL; track paging happens through the API
// in GetChapterURLs.
func (s *Scraper) GetIndexPages(_ context.Context, albumURL string) ([]string, error) {
	return []string{albumURL}, nil
}

// GetChapterURLs pages through the album's track list until an empty page.
func (s *Scraper) GetChapterURLs(ctx context.Context, indexURL string) ([]providers.ChapterRef, error) {
	id := albumID(indexURL)
	if id == "" {
		return nil, providers.ExtractionError("album id", indexURL)
	}

	var refs []providers.ChapterRef
	for page := 1; ; page++ {
		api := fmt.Sprintf("%s/revision/album/v1/getTracksList?albumId=%s&pageNum=%d&sort=1&pageSize=%d",
			s.baseURL, url.QueryEscape(id), page, PageSize)

		var list trackList
		if err := s.client.JSON(ctx, api, &list); err != nil {
			return nil, err
		}
		if len(list.Data.Tracks) == 0 {
			return refs, nil
		}

		for _, t := range list.Data.Tracks {
			if t.TrackID != 0 {
				refs = append(refs, providers.ChapterRef(strconv.FormatInt(t.TrackID, 10)))
			}
		}
	}
}

func (s *Scraper) GetChapterContent(ctx context.Context, ref providers.ChapterRef) (providers.ChapterContent, error) {
	id := string(ref)

	var track trackInfo
	if err := s.client.JSON(ctx, fmt.Sprintf("%s/tracks/%s.json", s.baseURL, id), &track); err != nil {
		return providers.ChapterContent{}, err
	}
	if track.PlayPath == "" {
		return providers.ChapterContent{}, providers.ExtractionError("play path", id)
	}

	return providers.ChapterContent{
		Title:    orDefault(track.Title, "Chapter_"+id),
		AudioURL: track.PlayPath,
		Format:   "m4a",
		URL:      fmt.Sprintf("%s/sound/%s", s.baseURL, id),
	}, nil
}

func albumID(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	u = strings.TrimRight(u, "/")
	return u[strings.LastIndex(u, "/")+1:]
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
