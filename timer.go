// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pageview

import (
	"context"
	"log/slog"
	"time"
)

// Timer measures one operation and logs its duration at debug level.
//
//	defer pageview.StartTimer("render page").Stop()
type Timer struct {
	name  string
	start time.Time
	now   func() time.Time
}

// StartTimer starts a timer.
func StartTimer(name string) *Timer {
	return &Timer{name: name, start: time.Now(), now: time.Now}
}

// Elapsed returns the time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return t.now().Sub(t.start)
}

// Stop logs the elapsed time and returns it.
func (t *Timer) Stop() time.Duration {
	d := t.Elapsed()
	Logger().LogAttrs(context.Background(), slog.LevelDebug, "pageview: timing",
		slog.String("op", t.name),
		slog.Duration("elapsed", d))
	return d
}
