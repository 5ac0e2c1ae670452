// Copyright (C) 2025 Hintwell Labs (oss@hintwell.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package wordlist

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hintwell/hintwell/pkg/logging"
)

func quietLogger() *logging.Logger {
	return logging.New(logging.Config{Quiet: true})
}

func TestNewWatcher_IgnoresEmptyPaths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.txt")
	require.NoError(t, os.WriteFile(path, []byte("CRANE\n"), 0o644))

	w, err := NewWatcher([]string{path, ""}, func() {}, quietLogger())
	require.NoError(t, err)
	defer w.Close()

	assert.Len(t, w.paths, 1)
}

func TestNewWatcher_BadDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "answers.txt")
	_, err := NewWatcher([]string{path}, func() {}, quietLogger())
	assert.Error(t, err)
}

func TestWatcher_FiresOnTrackedWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "answers.txt")
	require.NoError(t, os.WriteFile(path, []byte("CRANE\n"), 0o644))

	var fired atomic.Int32
	w, err := NewWatcher([]string{path}, func() { fired.Add(1) }, quietLogger())
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(path, []byte("SLATE\n"), 0o644))

	require.Eventually(t, func() bool {
		return fired.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "answers.txt")
	require.NoError(t, os.WriteFile(path, []byte("CRANE\n"), 0o644))

	var fired atomic.Int32
	w, err := NewWatcher([]string{path}, func() { fired.Add(1) }, quietLogger())
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// A rapid burst of writes should collapse into one callback.
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("SLATE\n"), 0o644))
		time.Sleep(20 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return fired.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	// Give the debounce window time to drain any stragglers.
	time.Sleep(debounceWindow + 200*time.Millisecond)
	assert.LessOrEqual(t, fired.Load(), int32(2))
}

func TestWatcher_IgnoresUntrackedFiles(t *testing.T) {
	dir := t.TempDir()
	tracked := filepath.Join(dir, "answers.txt")
	other := filepath.Join(dir, "other.txt")
	require.NoError(t, os.WriteFile(tracked, []byte("CRANE\n"), 0o644))

	var fired atomic.Int32
	w, err := NewWatcher([]string{tracked}, func() { fired.Add(1) }, quietLogger())
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(other, []byte("noise\n"), 0o644))

	time.Sleep(debounceWindow + 200*time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestWatcher_RunStopsOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.txt")
	require.NoError(t, os.WriteFile(path, []byte("CRANE\n"), 0o644))

	w, err := NewWatcher([]string{path}, func() {}, quietLogger())
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
