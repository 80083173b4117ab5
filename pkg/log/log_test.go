// Copyright 2020-2021 The OS-NVR Authors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package log

import (
	"context"
	"sync"
	"testing"
)

func newTestLogger() (context.Context, func(), *Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	logger := NewMockLogger()
	go logger.Start(ctx) //nolint:errcheck

	return ctx, cancel, logger
}

func TestLoggerEventFields(t *testing.T) {
	_, cancel, logger := newTestLogger()
	defer cancel()

	feed, cancel2 := logger.Subscribe()
	defer cancel2()

	go logger.Error().Src("reorder").StreamID("stream-0").Msg("queue overflow")

	got := <-feed
	if got.Level != LevelError {
		t.Fatalf("expected LevelError, got %v", got.Level)
	}
	if got.Subsys != "reorder" {
		t.Fatalf("expected subsys 'reorder', got %q", got.Subsys)
	}
	if got.StreamID != "stream-0" {
		t.Fatalf("expected stream id 'stream-0', got %q", got.StreamID)
	}
	if got.Msg != "queue overflow" {
		t.Fatalf("expected msg 'queue overflow', got %q", got.Msg)
	}
}

func TestLoggerMsgf(t *testing.T) {
	_, cancel, logger := newTestLogger()
	defer cancel()

	feed, cancel2 := logger.Subscribe()
	defer cancel2()

	go logger.Debug().Msgf("depth %d exceeds %d", 10, 5)

	got := <-feed
	if got.Msg != "depth 10 exceeds 5" {
		t.Fatalf("unexpected message: %q", got.Msg)
	}
}

func TestLoggerUnsubscribeStopsDelivery(t *testing.T) {
	_, cancel, logger := newTestLogger()
	defer cancel()

	feed1, cancel1 := logger.Subscribe()
	feed2, cancel2 := logger.Subscribe()
	cancel2()

	go logger.Info().Msg("test")

	<-feed1
	cancel1()

	if _, ok := <-feed2; ok {
		t.Fatalf("expected feed2 to be closed after unsubscribe")
	}
}

func TestLoggerMultipleSubscribersReceiveSameEvent(t *testing.T) {
	_, cancel, logger := newTestLogger()
	defer cancel()

	var wg sync.WaitGroup
	n := 3
	received := make([]string, n)

	feeds := make([]<-chan Log, n)
	cancels := make([]CancelFunc, n)
	for i := 0; i < n; i++ {
		feeds[i], cancels[i] = logger.Subscribe()
	}
	defer func() {
		for _, c := range cancels {
			c()
		}
	}()

	go logger.Warn().Msg("broadcast")

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			received[i] = (<-feeds[i]).Msg
		}(i)
	}
	wg.Wait()

	for i, msg := range received {
		if msg != "broadcast" {
			t.Fatalf("subscriber %d: expected 'broadcast', got %q", i, msg)
		}
	}
}
