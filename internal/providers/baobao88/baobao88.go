// Package baobao88 implements providers.Strategy for the baobao88.com audio
// library. Chapter refs are bare track ids; the mp3 location is derived from
// the id without another request.
package baobao88

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/noveld/internal/fetch"
	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/providers/htmltext"
)

const (
	Name         = "baobao88"
	BaseURL      = "http://www.baobao88.com"
	AudioBaseURL = "http://play.baobao88.com/bbfile/media/000007/%E5%B0%8F%E8%AF%B4"
)

type Scraper struct {
	client    *fetch.Client
	baseURL   string
	audioBase string
}

func New(c *fetch.Client) *Scraper {
	return NewWithBase(c, BaseURL, AudioBaseURL)
}

func NewWithBase(c *fetch.Client, base, audioBase string) *Scraper {
	return &Scraper{
		client:    c,
		baseURL:   strings.TrimSuffix(base, "/"),
		audioBase: strings.TrimSuffix(audioBase, "/"),
	}
}

func (s *Scraper) GetSourceInfo() providers.SourceInfo {
	return providers.SourceInfo{
		Name:     "Baobao88",
		URL:      s.baseURL,
		Language: "Chinese",
		Type:     providers.TypeAudio,
	}
}

func (s *Scraper) GetNovelInfo(ctx context.Context, url string) (providers.NovelInfo, error) {
	doc, err := s.client.Document(ctx, url)
	if err != nil {
		return providers.NovelInfo{}, err
	}

	intro := doc.Find("div.bookintro")

	title := strings.TrimSpace(intro.Find("h1").First().Text())
	if title == "" {
		title = "Unknown Title"
	}

	author := "Unknown Author"
	intro.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		if _, after, ok := strings.Cut(p.Text(), "作者："); ok {
			author = strings.TrimSpace(after)
			return false
		}
		return true
	})

	desc := ""
	if jj := doc.Find("div.jianjie").First(); jj.Length() > 0 {
		desc = strings.TrimSpace(htmltext.FromSelection(jj))
	}

	return providers.NovelInfo{
		Title:         title,
		Author:        author,
		Description:   desc,
		SourceURL:     url,
		SourceWebsite: "Baobao88",
	}, nil
}

func (s *Scraper) GetIndexPages(_ context.Context, url string) ([]string, error) {
	return []string{url}, nil
}

// GetChapterURLs returns track ids, not URLs.
func (s *Scraper) GetChapterURLs(ctx context.Context, indexURL string) ([]providers.ChapterRef, error) {
	doc, err := s.client.Document(ctx, indexURL)
	if err != nil {
		return nil, err
	}

	var ids []providers.ChapterRef
	doc.Find("div.listbox ul li a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || !strings.HasPrefix(href, "/yousheng/") {
			return
		}
		ids = append(ids, providers.ChapterRef(strings.TrimSuffix(path.Base(href), ".html")))
	})

	return ids, nil
}

func (s *Scraper) GetChapterContent(_ context.Context, ref providers.ChapterRef) (providers.ChapterContent, error) {
	id := string(ref)
	if id == "" {
		return providers.ChapterContent{}, providers.ExtractionError("track id", s.baseURL)
	}

	return providers.ChapterContent{
		Title:    "Chapter_" + id,
		AudioURL: fmt.Sprintf("%s/%s.mp3", s.audioBase, id),
		Format:   "mp3",
		URL:      fmt.Sprintf("%s/yousheng/%s.html", s.baseURL, id),
	}, nil
}
