// Package quanben implements providers.Strategy for quanben.io.
//
// Quanben lists chapters as /n/{slug}/{k}.html with k running from 1, so the
// chapter list is rebuilt from the last link instead of trusting the
// (sometimes truncated) listing.
package quanben

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/noveld/internal/fetch"
	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/providers/htmltext"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	Name    = "quanben"
	BaseURL = "https://www.quanben.io"
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
		Name:     "Quanben",
		URL:      s.baseURL,
		Language: "Chinese",
		Type:     providers.TypeText,
	}
}

// GetNovelInfo derives the title from the URL slug and, when possible, from
// the first chapter heading ("书名：第一章 ..."). The site does not expose
// the author.
func (s *Scraper) GetNovelInfo(ctx context.Context, url string) (providers.NovelInfo, error) {
	title := titleFromSlug(url)
	if title == "" {
		title = "Unknown Title"
	}

	refs, err := s.GetChapterURLs(ctx, url)
	if err != nil {
		return providers.NovelInfo{}, err
	}

	if len(refs) > 0 {
		first, err := s.GetChapterContent(ctx, refs[0])
		if err != nil {
			return providers.NovelInfo{}, err
		}
		if t := titleFromHeading(first.Title); t != "" {
			title = t
		}
	}

	return providers.NovelInfo{
		Title:         title,
		Author:        "Unknown Author",
		SourceURL:     url,
		SourceWebsite: "Quanben",
	}, nil
}

func (s *Scraper) GetIndexPages(_ context.Context, url string) ([]string, error) {
	return []string{url}, nil
}

func (s *Scraper) GetChapterURLs(ctx context.Context, indexURL string) ([]providers.ChapterRef, error) {
	slug := novelSlug(indexURL)
	if slug == "" {
		return nil, providers.ExtractionError("novel id", indexURL)
	}

	doc, err := s.client.Document(ctx, indexURL)
	if err != nil {
		return nil, err
	}

	prefix := "/n/" + slug + "/"
	last, _ := doc.Find("li").Last().Find("a").First().Attr("href")
	if last == "" {
		return nil, nil
	}

	numStr := strings.TrimSuffix(strings.TrimPrefix(last, prefix), ".html")
	if n, err := strconv.Atoi(numStr); err == nil {
		refs := make([]providers.ChapterRef, 0, n)
		for i := 1; i <= n; i++ {
			refs = append(refs, providers.ChapterRef(fmt.Sprintf("%s%s%d.html", s.baseURL, prefix, i)))
		}
		return refs, nil
	}

	var refs []providers.ChapterRef
	doc.Find("li a").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok && strings.HasPrefix(href, prefix) {
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

	title := strings.TrimSpace(doc.Find("h1.headline").First().Text())
	if title == "" {
		title = "Unknown Chapter"
	}

	content := ""
	if body := doc.Find("div.articlebody").First(); body.Length() > 0 {
		content = strings.TrimSpace(htmltext.FromSelection(body))
	}

	return providers.ChapterContent{
		Title:   title,
		Content: content,
		URL:     url,
	}, nil
}

// novelSlug extracts {slug} from .../n/{slug}/...
func novelSlug(url string) string {
	_, after, ok := strings.Cut(url, "/n/")
	if !ok {
		return ""
	}
	slug, _, _ := strings.Cut(after, "/")
	return slug
}

func titleFromSlug(url string) string {
	if !strings.HasSuffix(url, "/list.html") {
		return ""
	}

	parts := strings.Split(url, "/")
	slug := parts[len(parts)-2]
	if slug == "" {
		return ""
	}

	return cases.Title(language.English).String(strings.ReplaceAll(slug, "-", " "))
}

func titleFromHeading(heading string) string {
	if !strings.Contains(heading, "第一章") && !strings.Contains(heading, "Chapter") {
		return ""
	}

	sep := ":"
	if strings.Contains(heading, "：") {
		sep = "："
	}

	before, _, ok := strings.Cut(heading, sep)
	if !ok {
		return ""
	}

	return strings.TrimSpace(before)
}
