// Package coordinator drives one scraping run: it asks a Strategy for the
// novel, its index pages, chapter refs and chapter contents, hands the result
// to an Adapter and reports progress along the way.
package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/brogergvhs/noveld/internal/adapters"
	"github.com/brogergvhs/noveld/internal/batch"
	"github.com/brogergvhs/noveld/internal/chapters"
	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/ui"
)

const DefaultDelay = time.Second

type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

type Options struct {
	Reporter ui.Reporter
	Logger   Logger
	Stats    *ui.Stats

	// MaxThreads caps the batch size; <= 0 means batch.DefaultConcurrency.
	MaxThreads int
	// Delay is slept after every fetch. Zero disables it.
	Delay     time.Duration
	Selection chapters.Selection
}

type Coordinator struct {
	strategy providers.Strategy
	adapter  adapters.Adapter
	opts     Options

	warnings []string
}

func New(strategy providers.Strategy, adapter adapters.Adapter, opts Options) *Coordinator {
	if opts.Reporter == nil {
		opts.Reporter = ui.NopReporter{}
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	if opts.Stats == nil {
		opts.Stats = &ui.Stats{}
	}
	if opts.MaxThreads <= 0 {
		opts.MaxThreads = batch.DefaultConcurrency
	}

	return &Coordinator{strategy: strategy, adapter: adapter, opts: opts}
}

// ScrapeNovel runs the whole pipeline for url. maxChapters > 0 keeps only the
// first maxChapters chapters once every ref is known. Errors and panics come
// back as an error Result; the reporter is closed on every path.
func (c *Coordinator) ScrapeNovel(ctx context.Context, url string, maxChapters int) (res adapters.Result) {
	r := c.opts.Reporter
	c.warnings = nil

	defer r.Close()
	defer func() {
		if p := recover(); p != nil {
			res = c.fail(fmt.Errorf("panic: %v", p))
		}
	}()

	res, err := c.run(ctx, url, maxChapters)
	if err != nil {
		return c.fail(err)
	}

	if res.OK() {
		r.Print("Novel scraping completed successfully!")
		if p := res.Path(); p != "" {
			r.Print("Saved to: " + p)
		}
	} else {
		r.Print("Processing failed: " + res.Error)
	}

	res.Warnings = append(c.warnings, res.Warnings...)
	c.opts.Stats.TotalWarnings.Add(int64(len(res.Warnings)))

	return res
}

func (c *Coordinator) fail(err error) adapters.Result {
	c.opts.Logger.Errorf("Error scraping novel: %v", err)
	c.opts.Reporter.Print("Error: " + err.Error())

	res := adapters.ErrorResult(err)
	res.Warnings = c.warnings
	return res
}

func (c *Coordinator) run(ctx context.Context, url string, maxChapters int) (adapters.Result, error) {
	r := c.opts.Reporter

	r.Print("Starting novel scraping from URL: " + url)

	info, err := c.strategy.GetNovelInfo(ctx, url)
	if err != nil {
		return adapters.Result{}, fmt.Errorf("novel info: %w", err)
	}
	r.Print(fmt.Sprintf("Novel: '%s' by %s", info.Title, info.Author))

	r.Print("Retrieving index pages...")
	pages, err := c.strategy.GetIndexPages(ctx, url)
	if err != nil {
		return adapters.Result{}, fmt.Errorf("index pages: %w", err)
	}
	r.Print(fmt.Sprintf("Found %d index pages", len(pages)))

	r.Print("Retrieving chapter URLs...")
	refs, err := c.resolveChapterRefs(ctx, pages)
	if err != nil {
		return adapters.Result{}, err
	}

	refs, err = c.selectChapters(refs, maxChapters)
	if err != nil {
		return adapters.Result{}, err
	}

	r.Print(fmt.Sprintf("Scraping %d chapters...", len(refs)))
	r.Init(len(refs))

	contents, err := c.resolveChapterContent(ctx, refs)
	if err != nil {
		return adapters.Result{}, err
	}
	c.opts.Stats.TotalChapters.Add(int64(len(contents)))

	r.Print("Processing scraped content...")

	return c.adapter.ProcessNovel(ctx, info, contents), nil
}

func (c *Coordinator) selectChapters(refs []providers.ChapterRef, maxChapters int) ([]providers.ChapterRef, error) {
	sel := c.opts.Selection
	if maxChapters > 0 {
		sel.Limit = maxChapters
	}
	if sel.IsZero() {
		return refs, nil
	}

	available := len(refs)
	out, err := chapters.Apply(refs, sel)
	if err != nil {
		return nil, err
	}

	if len(out) < available {
		c.opts.Reporter.Print(fmt.Sprintf("Limiting to %d chapters (out of %d available)", len(out), available))
	}

	return out, nil
}

func (c *Coordinator) threads(n int) int {
	return min(c.opts.MaxThreads, n)
}

func (c *Coordinator) resolveChapterRefs(ctx context.Context, pages []string) ([]providers.ChapterRef, error) {
	r := c.opts.Reporter
	total := len(pages)

	if !batch.ShouldParallelize(total, c.opts.MaxThreads) {
		var refs []providers.ChapterRef
		for i, page := range pages {
			found, err := c.strategy.GetChapterURLs(ctx, page)
			if err != nil {
				return nil, fmt.Errorf("chapter urls from %s: %w", page, err)
			}
			refs = append(refs, found...)
			r.Print(fmt.Sprintf("\t[%d/%d] Found %d chapters", i+1, total, len(found)))

			if err := c.pause(ctx); err != nil {
				return nil, err
			}
		}
		return refs, nil
	}

	process := func(page string, _ int) ([]providers.ChapterRef, error) {
		found, err := c.strategy.GetChapterURLs(ctx, page)
		if err != nil {
			return nil, err
		}
		return found, c.pause(ctx)
	}

	done := func(start int, items []string, results batch.Results[[]providers.ChapterRef]) [][]providers.ChapterRef {
		var out [][]providers.ChapterRef
		for i := range items {
			idx := start + i
			found, ok := results[idx]
			if !ok {
				continue
			}
			out = append(out, found)
			r.Print(fmt.Sprintf("\t[%d/%d] Found %d chapters", idx+1, total, len(found)))
		}
		return out
	}

	outcome := batch.Process(pages, process, done, c.threads(total))
	recordFailures(c, "index page", pages, outcome.Failures)

	var refs []providers.ChapterRef
	for _, found := range outcome.Items {
		refs = append(refs, found...)
	}

	return refs, ctx.Err()
}

func (c *Coordinator) resolveChapterContent(ctx context.Context, refs []providers.ChapterRef) ([]providers.ChapterContent, error) {
	r := c.opts.Reporter
	total := len(refs)

	if !batch.ShouldParallelize(total, c.opts.MaxThreads) {
		contents := make([]providers.ChapterContent, 0, total)
		for i, ref := range refs {
			content, err := c.strategy.GetChapterContent(ctx, ref)
			if err != nil {
				return nil, fmt.Errorf("chapter %s: %w", ref, err)
			}
			contents = append(contents, content)

			r.Update(1)
			r.SetDescription(fmt.Sprintf("Scraping %d/%d chapters", i+1, total))

			if err := c.pause(ctx); err != nil {
				return nil, err
			}
		}
		return contents, nil
	}

	process := func(ref providers.ChapterRef, _ int) (providers.ChapterContent, error) {
		content, err := c.strategy.GetChapterContent(ctx, ref)
		if err != nil {
			return providers.ChapterContent{}, err
		}
		return content, c.pause(ctx)
	}

	done := func(start int, items []providers.ChapterRef, results batch.Results[providers.ChapterContent]) []providers.ChapterContent {
		var out []providers.ChapterContent
		for i := range items {
			if content, ok := results[start+i]; ok {
				out = append(out, content)
			}
		}

		r.Update(len(items))
		r.SetDescription(fmt.Sprintf("Scraping %d/%d chapters", start+len(items), total))

		return out
	}

	outcome := batch.Process(refs, process, done, c.threads(total))
	recordFailures(c, "chapter", refs, outcome.Failures)

	return outcome.Items, ctx.Err()
}

// recordFailures turns dropped batch items into warnings.
func recordFailures[T any](c *Coordinator, what string, items []T, failures []batch.Failure) {
	for _, f := range failures {
		msg := fmt.Sprintf("%s %d (%v) skipped: %v", what, f.Index+1, items[f.Index], f.Err)
		c.opts.Logger.Warnf("%s", msg)
		c.warnings = append(c.warnings, msg)
		c.opts.Stats.TotalFailed.Add(1)
	}
}

// pause sleeps the politeness delay unless ctx ends first.
func (c *Coordinator) pause(ctx context.Context) error {
	if c.opts.Delay <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(c.opts.Delay)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
