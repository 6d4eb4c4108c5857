package downloader

import (
	"io"
)

// progressWriter counts bytes passed through to w and reports the running
// total after every write.
type progressWriter struct {
	w        io.Writer
	written  int64
	onUpdate func(done int64)
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	if n > 0 {
		pw.written += int64(n)
		if pw.onUpdate != nil {
			pw.onUpdate(pw.written)
		}
	}
	return n, err
}

func copyWithProgress(dst io.Writer, src io.Reader, progress func(done int64)) (int64, error) {
	pw := &progressWriter{w: dst, onUpdate: progress}
	buf := make([]byte, 32*1024)

	_, err := io.CopyBuffer(pw, src, buf)
	return pw.written, err
}
