package main

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertLines_InterruptWhileReading(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seen := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- convertLines(ctx, pr, func(line string) error {
			seen <- line
			return nil
		})
	}()

	go func() { _, _ = io.WriteString(pw, "1 EUR in USD\n") }()
	select {
	case line := <-seen:
		assert.Equal(t, "1 EUR in USD", line)
	case <-time.After(2 * time.Second):
		t.Fatal("first line was never converted")
	}

	// The pipe stays open, so the reader is blocked when the interrupt arrives.
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("convertLines still blocked after interrupt")
	}
}

func TestConvertLines_SkipsBlankAndStopsOnError(t *testing.T) {
	var seen []string
	boom := errors.New("invalid string format")
	err := convertLines(context.Background(), strings.NewReader("a\n\n  \nb\nc\n"), func(line string) error {
		seen = append(seen, line)
		if line == "b" {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestConvertLines_CancelledConversionIsQuiet(t *testing.T) {
	err := convertLines(context.Background(), strings.NewReader("1 EUR in USD\n"), func(string) error {
		return context.Canceled
	})
	assert.NoError(t, err)
}

func TestConvertArgs_StopsOnInterrupt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var seen []string
	err := convertArgs(ctx, []string{"a", "b", "c"}, func(arg string) error {
		seen = append(seen, arg)
		cancel()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, seen)
}

func TestConvertArgs_CancelledFetchIsQuiet(t *testing.T) {
	err := convertArgs(context.Background(), []string{"a"}, func(string) error {
		return errors.Join(errors.New("rate source unavailable"), context.Canceled)
	})
	assert.NoError(t, err)
}
