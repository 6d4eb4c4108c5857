package downloader

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/brogergvhs/noveld/internal/fetch"
)

// Downloader streams remote files to disk, retrying through the fetch
// client's policy. A failed download never leaves a partial file behind.
type Downloader struct {
	client *fetch.Client
}

func New(c *fetch.Client) *Downloader {
	return &Downloader{client: c}
}

// Download writes url to output and returns the number of bytes written.
// progress, when set, receives the running byte count of the current
// attempt.
func (d *Downloader) Download(ctx context.Context, url, output string, progress func(done int64)) (int64, error) {
	if url == "" {
		return 0, errors.New("empty download URL")
	}

	var written int64
	err := d.client.Retry(ctx, url, func(ctx context.Context) error {
		n, err := d.download(ctx, url, output, progress)
		written = n
		return err
	})
	if err != nil {
		_ = os.Remove(output)
		return 0, err
	}

	return written, nil
}

func (d *Downloader) download(
	ctx context.Context,
	url, output string,
	progress func(done int64),
) (written int64, err error) {
	resp, err := d.client.Open(ctx, url)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	f, err := os.Create(output)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", fetch.ErrPermanent, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	written, err = copyWithProgress(f, resp.Body, progress)
	if err != nil {
		return written, err
	}

	if resp.ContentLength > 0 && written < resp.ContentLength {
		return written, fmt.Errorf("short body: %d of %d bytes", written, resp.ContentLength)
	}

	return written, nil
}
