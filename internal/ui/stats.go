package ui

import "sync/atomic"

type Stats struct {
	TotalChapters atomic.Int64
	TotalFailed   atomic.Int64
	TotalBytes    atomic.Int64
	TotalWarnings atomic.Int64
}
