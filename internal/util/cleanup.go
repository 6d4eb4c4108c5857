package util

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// SetupInterruptHandler runs cleanup once on SIGINT or SIGTERM and exits
// with status 1. The returned stop function detaches the handler; call it
// once the run has finished normally.
func SetupInterruptHandler(cleanup func()) (stop func()) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	var once sync.Once

	go func() {
		select {
		case <-sig:
			fmt.Fprintln(os.Stderr, "\nInterrupt received. Cleaning up...")
			if cleanup != nil {
				cleanup()
			}
			fmt.Fprintln(os.Stderr, "Exiting due to interrupt.")
			os.Exit(1)
		case <-done:
		}
	}()

	return func() {
		once.Do(func() {
			signal.Stop(sig)
			close(done)
		})
	}
}

// RemoveIfEmpty deletes dir when it exists and has no entries.
func RemoveIfEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return false
	}
	return os.Remove(dir) == nil
}
