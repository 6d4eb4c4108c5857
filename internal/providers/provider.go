package providers

import (
	"context"
	"errors"
	"fmt"
)

// ErrExtraction is returned by a Strategy when markup it depends on is missing.
var ErrExtraction = errors.New("extraction failed")

// ExtractionError wraps ErrExtraction with what was being extracted and where.
func ExtractionError(what, url string) error {
	return fmt.Errorf("%w: %s (%s)", ErrExtraction, what, url)
}

const (
	TypeText  = "text"
	TypeAudio = "audio"
)

type SourceInfo struct {
	Name     string
	URL      string
	Language string
	Type     string
}

type NovelInfo struct {
	Title         string
	Author        string
	Description   string
	SourceURL     string
	SourceWebsite string
	CoverURL      string
}

// ChapterRef is whatever a Strategy needs to fetch one chapter later: usually
// an absolute URL, sometimes a site-specific id.
type ChapterRef string

type ChapterContent struct {
	Title    string
	Content  string
	AudioURL string
	Format   string
	URL      string
}

func (c ChapterContent) IsAudio() bool {
	return c.AudioURL != ""
}

// Strategy extracts a novel from one website.
type Strategy interface {
	GetSourceInfo() SourceInfo
	GetNovelInfo(ctx context.Context, url string) (NovelInfo, error)
	GetIndexPages(ctx context.Context, url string) ([]string, error)
	GetChapterURLs(ctx context.Context, indexURL string) ([]ChapterRef, error)
	GetChapterContent(ctx context.Context, ref ChapterRef) (ChapterContent, error)
}
