// Package syosetu implements providers.Strategy for ncode.syosetu.com.
//
// The site has changed its markup more than once, so every lookup tries the
// current class names first and the legacy ones after.
package syosetu

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/noveld/internal/fetch"
	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/providers/htmltext"
)

const (
	Name    = "syosetu"
	BaseURL = "https://ncode.syosetu.com"
)

var (
	chapterLinkSelectors = []string{"a.subtitle", "a.p-eplist__subtitle", "dl.novel_sublist2 a"}
	titleSelectors       = []string{".novel_subtitle", ".p-novel__subtitle", "h1.novel_title", "h2.novel_subtitle"}
	bodySelectors        = []string{"#novel_honbun", "#novel_color", ".novel_view", ".p-novel__body", ".p-novel_main"}
)

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
		Name:     "Syosetu",
		URL:      s.baseURL,
		Language: "Japanese",
		Type:     providers.TypeText,
	}
}

func (s *Scraper) GetNovelInfo(ctx context.Context, url string) (providers.NovelInfo, error) {
	doc, err := s.client.Document(ctx, url)
	if err != nil {
		return providers.NovelInfo{}, err
	}

	title := strings.TrimSpace(doc.Find("p.novel_title").First().Text())
	if title == "" {
		page := strings.TrimSpace(doc.Find("title").First().Text())
		title, _, _ = strings.Cut(page, " - ")
	}
	if title == "" {
		title = "Unknown Title"
	}

	author := doc.Find("div.novel_writername a").First().Text()
	if author == "" {
		author = doc.Find("div.novel_writername").First().Text()
	}
	author = strings.TrimSpace(strings.ReplaceAll(author, "作者：", ""))
	if author == "" {
		author = "Unknown Author"
	}

	desc := ""
	if ex := doc.Find("div#novel_ex").First(); ex.Length() > 0 {
		desc = strings.TrimSpace(htmltext.FromSelection(ex))
	}

	return providers.NovelInfo{
		Title:         title,
		Author:        author,
		Description:   desc,
		SourceURL:     url,
		SourceWebsite: "Syosetu",
	}, nil
}

// GetIndexPages returns the novel page itself; Syosetu lists every chapter
// on one page.
func (s *Scraper) GetIndexPages(_ context.Context, url string) ([]string, error) {
	return []string{url}, nil
}

func (s *Scraper) GetChapterURLs(ctx context.Context, indexURL string) ([]providers.ChapterRef, error) {
	doc, err := s.client.Document(ctx, indexURL)
	if err != nil {
		return nil, err
	}

	links := firstMatch(doc, chapterLinkSelectors)

	var refs []providers.ChapterRef
	links.Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok {
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

	title := strings.TrimSpace(firstMatch(doc, titleSelectors).First().Text())
	if title == "" {
		page := strings.TrimSpace(doc.Find("title").First().Text())
		if _, after, ok := strings.Cut(page, " - "); ok {
			title = after
		}
	}

	content := ""
	if body := firstMatch(doc, bodySelectors); body.Length() > 0 {
		content = strings.TrimSpace(htmltext.FromSelection(body.First()))
	}

	if title == "" || content == "" {
		return providers.ChapterContent{}, providers.ExtractionError("chapter title or content", url)
	}

	return providers.ChapterContent{
		Title:   title,
		Content: content,
		URL:     url,
	}, nil
}

// firstMatch returns the matches of the first selector that finds anything,
// or an empty selection.
func firstMatch(doc *goquery.Document, selectors []string) *goquery.Selection {
	var found *goquery.Selection
	for _, sel := range selectors {
		if found = doc.Find(sel); found.Length() > 0 {
			break
		}
	}
	return found
}
