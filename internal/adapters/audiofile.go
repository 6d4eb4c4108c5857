package adapters

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/bogem/id3v2"
	"github.com/brogergvhs/noveld/internal/chapters"
	"github.com/brogergvhs/noveld/internal/downloader"
	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/ui"
	"github.com/brogergvhs/noveld/internal/util"
)

// AudioFile downloads every chapter's audio into one folder. A chapter that
// cannot be downloaded is counted as failed; only folder creation and
// cancellation abort the run.
type AudioFile struct {
	opts Options
	dl   *downloader.Downloader

	// Cleanup may run from a signal handler while a download is in flight.
	mu sync.Mutex

	// madeDir is set when folder did not exist before the run.
	madeDir string

	// files holds every target this run started writing.
	files []string
}

func NewAudioFile(opts Options) (*AudioFile, error) {
	if opts.Client == nil {
		return nil, errors.New("audio_file adapter needs an HTTP client")
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}

	opts.AudioExtension = strings.TrimPrefix(strings.TrimSpace(opts.AudioExtension), ".")
	if opts.AudioExtension == "" {
		opts.AudioExtension = DefaultAudioExtension
	}

	return &AudioFile{opts: opts, dl: downloader.New(opts.Client)}, nil
}

func (a *AudioFile) ProcessNovel(ctx context.Context, info providers.NovelInfo, chs []providers.ChapterContent) Result {
	title, author := novelNames(info)

	folder := a.opts.Output
	if folder == "" {
		folder = chapters.NovelBaseName(title, author)
	}

	abs, err := filepath.Abs(folder)
	if err != nil {
		return ErrorResult(err)
	}

	a.mu.Lock()
	a.madeDir, a.files = "", nil
	a.mu.Unlock()

	res, err := a.download(ctx, abs, title, author, chs)
	if err != nil {
		if cerr := a.Cleanup(); cerr != nil {
			a.opts.Logger.Warnf("cleanup %s: %v", abs, cerr)
		}
		return ErrorResult(err)
	}

	return res
}

func (a *AudioFile) download(ctx context.Context, folder, title, author string, chs []providers.ChapterContent) (Result, error) {
	if _, err := os.Stat(folder); os.IsNotExist(err) {
		if err := os.MkdirAll(folder, 0o755); err != nil {
			return Result{}, fmt.Errorf("create folder: %w", err)
		}
		a.mu.Lock()
		a.madeDir = folder
		a.mu.Unlock()
	} else if err != nil {
		return Result{}, fmt.Errorf("create folder: %w", err)
	}

	res := Result{
		Status:        StatusSuccess,
		FolderPath:    folder,
		TotalChapters: len(chs),
	}

	r := a.opts.Reporter
	if r == nil {
		r = ui.NopReporter{}
	}
	r.Init(len(chs))

	used := make(map[string]bool, len(chs))

	for i, ch := range chs {
		n := i + 1
		r.SetDescription(fmt.Sprintf("Downloading %d/%d", n, len(chs)))

		if ch.AudioURL == "" {
			res.FailedDownloads++
			res.Warnings = append(res.Warnings, fmt.Sprintf("chapter %d (%s): no audio URL", n, ch.Title))
			r.Update(1)
			continue
		}

		name := chapters.FileName(ch.Title, n, a.opts.AudioExtension)
		if used[name] {
			renamed := chapters.FileName(fmt.Sprintf("%s (%d)", strings.TrimSpace(ch.Title), n), n, a.opts.AudioExtension)
			res.Warnings = append(res.Warnings, fmt.Sprintf("chapter %d: %s already used, saving as %s", n, name, renamed))
			name = renamed
		}
		used[name] = true

		target := filepath.Join(folder, name)
		a.track(target)

		written, err := a.dl.Download(ctx, ch.AudioURL, target, func(done int64) {
			r.SetDescription(fmt.Sprintf("Downloading %d/%d (%s)", n, len(chs), util.Human(done)))
		})
		r.Update(1)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}
			a.opts.Logger.Warnf("chapter %d: %v", n, err)
			res.FailedDownloads++
			res.Warnings = append(res.Warnings, fmt.Sprintf("chapter %d (%s): %v", n, ch.Title, err))
			continue
		}

		res.SuccessfulDownloads++
		res.BytesWritten += written
		if a.opts.Stats != nil {
			a.opts.Stats.TotalBytes.Add(written)
		}
		a.opts.Logger.Debugf("saved %s (%s)", filepath.Base(target), util.Human(written))

		if a.opts.TagAudio && a.opts.AudioExtension == "mp3" {
			if err := tagFile(target, ch.Title, title, author, n); err != nil {
				a.opts.Logger.Warnf("tag %s: %v", filepath.Base(target), err)
				res.Warnings = append(res.Warnings, fmt.Sprintf("chapter %d: tagging failed: %v", n, err))
			}
		}
	}

	return res, nil
}

func tagFile(path, chapterTitle, novelTitle, author string, track int) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetTitle(chapterTitle)
	tag.SetArtist(author)
	tag.SetAlbum(novelTitle)
	tag.AddTextFrame("TPE2", id3v2.EncodingUTF8, author)
	tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, strconv.Itoa(track))

	return tag.Save()
}

func (a *AudioFile) track(path string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.files = append(a.files, path)
}

// Cleanup removes the files this run wrote, and the folder too when the run
// created it and nothing else ended up inside.
func (a *AudioFile) Cleanup() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	for _, f := range a.files {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	a.files = nil

	if a.madeDir != "" {
		util.RemoveIfEmpty(a.madeDir)
	}

	return errors.Join(errs...)
}
