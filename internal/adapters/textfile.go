package adapters

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/brogergvhs/noveld/internal/chapters"
	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/util"
)

// TextFile writes the whole novel into one UTF-8 text file.
type TextFile struct {
	opts Options

	// Cleanup may run from a signal handler while the file is being written.
	mu   sync.Mutex
	path string

	// madeDir is set when the output's parent folder did not exist before.
	madeDir string

	// wrap lets tests interpose on the file writer.
	wrap func(io.Writer) io.Writer
}

func NewTextFile(opts Options) *TextFile {
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	return &TextFile{opts: opts}
}

func (a *TextFile) ProcessNovel(ctx context.Context, info providers.NovelInfo, chs []providers.ChapterContent) Result {
	title, author := novelNames(info)

	path := a.opts.Output
	if path == "" {
		path = chapters.NovelBaseName(title, author) + ".txt"
	} else if !strings.HasSuffix(path, ".txt") {
		path += ".txt"
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return ErrorResult(err)
	}
	a.mu.Lock()
	a.path, a.madeDir = abs, ""
	a.mu.Unlock()

	if err := a.write(ctx, abs, title, author, chs); err != nil {
		if cerr := a.Cleanup(); cerr != nil {
			a.opts.Logger.Warnf("cleanup %s: %v", abs, cerr)
		}
		return ErrorResult(err)
	}

	a.opts.Logger.Debugf("wrote %d chapters to %s", len(chs), abs)

	return Result{
		Status:        StatusSuccess,
		FilePath:      abs,
		ChaptersSaved: len(chs),
	}
}

func (a *TextFile) write(ctx context.Context, path, title, author string, chs []providers.ChapterContent) (err error) {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		a.mu.Lock()
		a.madeDir = dir
		a.mu.Unlock()
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	var out io.Writer = f
	if a.wrap != nil {
		out = a.wrap(f)
	}
	w := bufio.NewWriter(out)

	if a.opts.IncludeMetadata {
		if _, err := fmt.Fprintf(w, "%s\n\n\n%s\n\n\n\n\n\n\n\n\n", title, author); err != nil {
			return err
		}
	}

	for _, ch := range chs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\n\n\n%s\n\n\n\n\n\n", ch.Title, ch.Content); err != nil {
			return err
		}
	}

	return w.Flush()
}

// Cleanup removes the output file if one was started.
func (a *TextFile) Cleanup() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.path == "" {
		return nil
	}
	if err := os.Remove(a.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	if a.madeDir != "" {
		util.RemoveIfEmpty(a.madeDir)
	}
	return nil
}
