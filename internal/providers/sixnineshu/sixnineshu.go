// Package sixnineshu implements providers.Strategy for 69shu.net.
package sixnineshu

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/noveld/internal/fetch"
	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/providers/htmltext"
)

const (
	Name    = "69shu"
	BaseURL = "https://69shu.net"
)

type Scraper struct {
	client  *fetch.Client
	baseURL string
}

func New(c *fetch.Client) *Scraper {
	return NewWithBase(c, BaseURL)
}

// NewWithBase points the scraper at a different host; relative links are
// joined onto base.
func NewWithBase(c *fetch.Client, base string) *Scraper {
	return &Scraper{client: c, baseURL: strings.TrimSuffix(base, "/")}
}

func (s *Scraper) GetSourceInfo() providers.SourceInfo {
	return providers.SourceInfo{
		Name:     "69shu.net",
		URL:      s.baseURL,
		Language: "Chinese",
		Type:     providers.TypeText,
	}
}

func (s *Scraper) GetNovelInfo(ctx context.Context, url string) (providers.NovelInfo, error) {
	doc, err := s.client.Document(ctx, url)
	if err != nil {
		return providers.NovelInfo{}, err
	}

	nav := doc.Find("div.booknav2").First()
	title := strings.TrimSpace(nav.Find("h1").First().Text())
	author := strings.TrimSpace(nav.Find("h2 a").First().Text())
	desc := doc.Find("div.navtxt").First()

	if title == "" || author == "" || desc.Length() == 0 {
		return providers.NovelInfo{}, providers.ExtractionError("novel info", url)
	}

	return providers.NovelInfo{
		Title:         title,
		Author:        author,
		Description:   strings.TrimSpace(htmltext.FromSelection(desc)),
		SourceURL:     url,
		SourceWebsite: "69shu.net",
	}, nil
}

func (s *Scraper) GetIndexPages(ctx context.Context, url string) ([]string, error) {
	doc, err := s.client.Document(ctx, url)
	if err != nil {
		return nil, err
	}

	var pages []string
	doc.Find("div.listpage").First().Find("option").Each(func(_ int, o *goquery.Selection) {
		if v, ok := o.Attr("value"); ok && v != "" {
			pages = append(pages, s.baseURL+v)
		}
	})

	if len(pages) == 0 {
		return nil, providers.ExtractionError("index pages", url)
	}

	return pages, nil
}

func (s *Scraper) GetChapterURLs(ctx context.Context, indexURL string) ([]providers.ChapterRef, error) {
	doc, err := s.client.Document(ctx, indexURL)
	if err != nil {
		return nil, err
	}

	// the first list holds the "latest chapters" teaser
	lists := doc.Find("div.info_chapters ul.p2")
	if lists.Length() < 2 {
		return nil, providers.ExtractionError("chapter list", indexURL)
	}

	var refs []providers.ChapterRef
	lists.Eq(1).Find("li").Each(func(_ int, li *goquery.Selection) {
		if href, ok := li.Find("a").First().Attr("href"); ok {
			refs = append(refs, providers.ChapterRef(s.baseURL+href))
		}
	})

	return refs, nil
}

func (s *Scraper) GetChapterContent(ctx context.Context, ref providers.ChapterRef) (providers.ChapterContent, error) {
	url := string(ref)

	doc, err := s.client.Document(ctx, url)
	if err != nil {
		return providers.ChapterContent{}, err
	}

	title := doc.Find("h2").First()
	body := doc.Find("div.novelcontent").First()
	if title.Length() == 0 || body.Length() == 0 {
		return providers.ChapterContent{}, providers.ExtractionError("chapter content", url)
	}

	return providers.ChapterContent{
		Title:   strings.TrimSpace(title.Text()),
		Content: strings.TrimSpace(htmltext.FromSelection(body)),
		URL:     url,
	}, nil
}
