package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Reporter receives progress from a scraping run. The coordinator never
// prints directly; everything user-facing goes through a Reporter.
type Reporter interface {
	Print(msg string)
	Init(total int)
	Update(delta int)
	SetDescription(desc string)
	Close()
}

// BarReporter renders a single mpb bar and prints messages above it.
type BarReporter struct {
	out io.Writer

	mu  sync.Mutex
	p   *mpb.Progress
	bar *mpb.Bar

	desc  atomic.Value
	start time.Time
}

func NewBarReporter(out io.Writer) *BarReporter {
	if out == nil {
		out = os.Stdout
	}

	r := &BarReporter{out: out}
	r.desc.Store("Processing")

	return r
}

func (r *BarReporter) Print(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.p != nil {
		_, _ = fmt.Fprintln(r.p, msg)
		return
	}

	_, _ = fmt.Fprintln(r.out, msg)
}

// Write lets a BarReporter act as a log destination: while a bar is
// running, p is printed above it.
func (r *BarReporter) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.p != nil {
		return r.p.Write(p)
	}
	return r.out.Write(p)
}

func (r *BarReporter) Init(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.finish()

	r.start = time.Now()
	r.p = mpb.New(
		mpb.WithWidth(52),
		mpb.WithOutput(r.out),
		mpb.WithRefreshRate(120*time.Millisecond),
		mpb.WithAutoRefresh(),
	)

	r.bar = r.p.New(
		int64(total),
		mpb.BarStyle().Rbound("]"),

		mpb.PrependDecorators(
			decor.Any(func(_ decor.Statistics) string {
				return r.desc.Load().(string) + "  "
			}),
		),

		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncWidth),
			decor.CountersNoUnit(" | %d/%d", decor.WCSyncWidth),
			decor.Any(func(_ decor.Statistics) string {
				return fmt.Sprintf(" | %ds", int(time.Since(r.start).Seconds()))
			}),
		),
	)
}

func (r *BarReporter) Update(delta int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar != nil {
		r.bar.IncrBy(delta)
	}
}

func (r *BarReporter) SetDescription(desc string) {
	r.desc.Store(desc)
}

func (r *BarReporter) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.finish()
}

// finish completes the bar at its current value so Wait can return even
// when items were dropped.
func (r *BarReporter) finish() {
	if r.p == nil {
		return
	}

	r.bar.SetTotal(-1, true)
	r.p.Wait()

	r.p = nil
	r.bar = nil
}

// NopReporter discards everything. Used for --quiet and in tests.
type NopReporter struct{}

func (NopReporter) Print(string)          {}
func (NopReporter) Init(int)              {}
func (NopReporter) Update(int)            {}
func (NopReporter) SetDescription(string) {}
func (NopReporter) Close()                {}

// LineReporter prints messages and progress as plain lines. Handy when the
// output is not a terminal.
type LineReporter struct {
	Out io.Writer

	mu    sync.Mutex
	total int
	done  int
	desc  string
}

func (r *LineReporter) Print(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintln(r.Out, msg)
}

func (r *LineReporter) Init(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total, r.done = total, 0
}

func (r *LineReporter) Update(delta int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done += delta
	_, _ = fmt.Fprintf(r.Out, "%s [%d/%d]\n", r.desc, r.done, r.total)
}

func (r *LineReporter) SetDescription(desc string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.desc = desc
}

func (r *LineReporter) Close() {}
