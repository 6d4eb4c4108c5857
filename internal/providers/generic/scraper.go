package generic

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/brogergvhs/noveld/internal/fetch"
	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/providers/htmltext"
)

const Name = "generic"

var contentSelectors = []string{
	"article",
	"#content",
	".content",
	"#chaptercontent",
	".chapter-content",
	".entry-content",
	"#novel_content",
}

type Scraper struct {
	client *fetch.Client
}

func New(c *fetch.Client) *Scraper {
	return &Scraper{client: c}
}

func (s *Scraper) GetSourceInfo() providers.SourceInfo {
	return providers.SourceInfo{
		Name:     "Generic",
		URL:      "",
		Language: "Unknown",
		Type:     providers.TypeText,
	}
}

func (s *Scraper) GetNovelInfo(ctx context.Context, pageURL string) (providers.NovelInfo, error) {
	doc, err := s.client.Document(ctx, pageURL)
	if err != nil {
		return providers.NovelInfo{}, err
	}

	title := firstNonEmpty(
		meta(doc, `meta[property="og:novel:book_name"]`),
		meta(doc, `meta[property="og:title"]`),
		doc.Find("h1").First().Text(),
		doc.Find("title").First().Text(),
	)
	if title == "" {
		title = "Unknown Title"
	}

	author := firstNonEmpty(
		meta(doc, `meta[property="og:novel:author"]`),
		meta(doc, `meta[name="author"]`),
	)
	if author == "" {
		author = "Unknown Author"
	}

	desc := firstNonEmpty(
		meta(doc, `meta[property="og:description"]`),
		meta(doc, `meta[name="description"]`),
	)

	return providers.NovelInfo{
		Title:         title,
		Author:        author,
		Description:   desc,
		SourceURL:     pageURL,
		SourceWebsite: hostOf(pageURL),
		CoverURL:      meta(doc, `meta[property="og:image"]`),
	}, nil
}

func (s *Scraper) GetIndexPages(_ context.Context, pageURL string) ([]string, error) {
	return []string{pageURL}, nil
}

type candidate struct {
	ref   providers.ChapterRef
	label label
}

// GetChapterURLs collects links that look like chapters, deduplicated and
// sorted by parsed chapter number. Links without a parsable number are
// skipped.
func (s *Scraper) GetChapterURLs(ctx context.Context, indexURL string) ([]providers.ChapterRef, error) {
	doc, err := s.client.Document(ctx, indexURL)
	if err != nil {
		return nil, err
	}

	var found []candidate
	seen := map[string]bool{}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		text := strings.TrimSpace(a.Text())

		if !looksLikeChapterLink(href, text) {
			return
		}

		l, ok := parseChapterLabel(href, text)
		if !ok {
			return
		}

		u := resolveURL(indexURL, href)
		if seen[u] {
			return
		}
		seen[u] = true

		found = append(found, candidate{ref: providers.ChapterRef(u), label: l})
	})

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].label.less(found[j].label)
	})

	refs := make([]providers.ChapterRef, len(found))
	for i, c := range found {
		refs[i] = c.ref
	}

	return refs, nil
}

func (s *Scraper) GetChapterContent(ctx context.Context, ref providers.ChapterRef) (providers.ChapterContent, error) {
	url := string(ref)

	doc, err := s.client.Document(ctx, url)
	if err != nil {
		return providers.ChapterContent{}, err
	}

	title := firstNonEmpty(
		doc.Find("h1").First().Text(),
		doc.Find("h2").First().Text(),
		doc.Find("title").First().Text(),
	)

	content := strings.TrimSpace(htmltext.FromSelection(largestBlock(doc)))
	if content == "" {
		return providers.ChapterContent{}, providers.ExtractionError("chapter content", url)
	}

	return providers.ChapterContent{
		Title:   title,
		Content: content,
		URL:     url,
	}, nil
}

// largestBlock picks the content candidate with the most text, or body.
func largestBlock(doc *goquery.Document) *goquery.Selection {
	best := doc.Find("body").First()
	bestLen := 0

	for _, sel := range contentSelectors {
		doc.Find(sel).Each(func(_ int, block *goquery.Selection) {
			if n := utf8.RuneCountInString(strings.TrimSpace(block.Text())); n > bestLen {
				best, bestLen = block, n
			}
		})
	}

	return best
}

func meta(doc *goquery.Document, selector string) string {
	v, _ := doc.Find(selector).First().Attr("content")
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func hostOf(u string) string {
	_, rest, ok := strings.Cut(u, "://")
	if !ok {
		return u
	}
	host, _, _ := strings.Cut(rest, "/")
	return host
}
