// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package locks implements a process-wide file-path lock registry so that
// concurrent write_file/edit_file/multi_edit calls against the same file
// serialize instead of racing. Paths are canonicalized before locking so
// that symlinks and relative paths covering the same file contend on the
// same entry.
package locks

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// retryInterval is how long Acquire sleeps between contention checks.
const retryInterval = 50 * time.Millisecond

var (
	mu       sync.Mutex
	held     = make(map[string]struct{})
	poisoned bool
)

// Handle releases its path's lock exactly once, on Release. A Handle must
// always be released via defer so that a panic in the borrower cannot leak
// the lock.
type Handle struct {
	path     string
	released bool
}

// Canonicalize resolves path to an absolute, symlink-evaluated form for use
// as a lock key. If path does not exist yet (e.g. a file about to be
// created), it resolves the path against the current working directory
// without requiring the file itself to exist.
func Canonicalize(path string) (string, error) {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved, nil
	}

	abs := path
	if !filepath.IsAbs(abs) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("locks: resolving cwd: %w", err)
		}
		abs = filepath.Join(cwd, abs)
	}

	// The file itself may not exist yet; evaluate symlinks on the parent
	// directory so a symlinked directory still canonicalizes consistently.
	dir, base := filepath.Dir(abs), filepath.Base(abs)
	if resolvedDir, err := filepath.EvalSymlinks(dir); err == nil {
		return filepath.Join(resolvedDir, base), nil
	}
	return filepath.Clean(abs), nil
}

// Acquire blocks until it obtains the lock for path's canonical form,
// spin-checking on a fixed interval while another holder is active. It
// returns a Handle that must be released (typically via defer) to free the
// lock, and an error only if the registry has been poisoned or the path
// cannot be canonicalized.
func Acquire(path string) (*Handle, error) {
	canonical, err := Canonicalize(path)
	if err != nil {
		return nil, err
	}

	for {
		mu.Lock()
		if poisoned {
			mu.Unlock()
			return nil, fmt.Errorf("locks: global lock registry poisoned")
		}
		if _, busy := held[canonical]; !busy {
			held[canonical] = struct{}{}
			mu.Unlock()
			return &Handle{path: canonical}, nil
		}
		mu.Unlock()
		time.Sleep(retryInterval)
	}
}

// Release frees the lock. It is safe to call more than once; only the
// first call has an effect. Release never panics, even if the registry
// entry is unexpectedly absent, so that deferred release in a recovering
// goroutine cannot itself crash the process.
func (h *Handle) Release() {
	if h == nil || h.released {
		return
	}
	h.released = true

	mu.Lock()
	defer mu.Unlock()
	if _, ok := held[h.path]; !ok {
		// Entry missing under a held handle means registry bookkeeping
		// diverged from reality; treat as poisoned rather than silently
		// continuing with an inconsistent lock table.
		poisoned = true
		return
	}
	delete(held, h.path)
}

// Poison marks the registry as permanently broken; every subsequent Acquire
// fails until Reset is called. Exposed so recovery code that detects
// registry corruption (e.g. a released handle whose entry had already been
// removed by something else) can make the failure explicit rather than let
// callers silently proceed unlocked.
func Poison() {
	mu.Lock()
	defer mu.Unlock()
	poisoned = true
}

// Reset clears all held locks and the poisoned flag. Exposed for tests that
// need isolation between cases.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	held = make(map[string]struct{})
	poisoned = false
}

// HeldCount reports how many paths are currently locked. Exposed for
// periodic housekeeping that logs a stale-lock sweep without needing
// visibility into the registry's internal map.
func HeldCount() int {
	mu.Lock()
	defer mu.Unlock()
	return len(held)
}

// IsPoisoned reports whether the registry has been poisoned.
func IsPoisoned() bool {
	mu.Lock()
	defer mu.Unlock()
	return poisoned
}
