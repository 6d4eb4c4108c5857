// Package adapters persists a scraped novel. An Adapter receives the novel
// metadata and every fetched chapter in order and reports what it wrote as a
// Result.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/brogergvhs/noveld/internal/fetch"
	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/ui"
)

const (
	TextFileName  = "text_file"
	AudioFileName = "audio_file"

	StatusSuccess = "success"
	StatusError   = "error"

	DefaultAudioExtension = "mp3"
)

var ErrUnknownAdapter = errors.New("unknown adapter")

// Result is the outcome of a run. Only the fields relevant to the adapter
// that produced it are set.
type Result struct {
	Status string

	// text_file
	FilePath      string
	ChaptersSaved int

	// audio_file
	FolderPath          string
	SuccessfulDownloads int
	FailedDownloads     int
	TotalChapters       int
	BytesWritten        int64

	Error    string
	Warnings []string
}

func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

// Path is the artifact location for either adapter.
func (r Result) Path() string {
	if r.FilePath != "" {
		return r.FilePath
	}
	return r.FolderPath
}

func ErrorResult(err error) Result {
	return Result{Status: StatusError, Error: err.Error()}
}

type Adapter interface {
	ProcessNovel(ctx context.Context, info providers.NovelInfo, chapters []providers.ChapterContent) Result
	// Cleanup removes whatever a failed run left behind.
	Cleanup() error
}

type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Warnf(string, ...any)  {}

type Options struct {
	// Output is the target file (text_file) or folder (audio_file). Empty
	// means "{title} - {author}" in the working directory.
	Output          string
	IncludeMetadata bool
	AudioExtension  string
	TagAudio        bool

	// Client is required by audio_file.
	Client *fetch.Client
	Logger Logger
	Stats  *ui.Stats

	// Reporter, when set, shows per-chapter download progress for audio_file.
	Reporter ui.Reporter
}

type factory func(opts Options) (Adapter, error)

var factories = map[string]factory{
	TextFileName:  func(opts Options) (Adapter, error) { return NewTextFile(opts), nil },
	AudioFileName: func(opts Options) (Adapter, error) { return NewAudioFile(opts) },
}

func Names() []string {
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func New(name string, opts Options) (Adapter, error) {
	f, ok := factories[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownAdapter, name, strings.Join(Names(), ", "))
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	return f(opts)
}

func novelNames(info providers.NovelInfo) (title, author string) {
	title = strings.TrimSpace(info.Title)
	if title == "" {
		title = "Unknown Title"
	}
	author = strings.TrimSpace(info.Author)
	if author == "" {
		author = "Unknown Author"
	}
	return title, author
}
