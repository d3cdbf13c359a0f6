package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestJSONWriterSinkWritesOneObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), Event{ID: NewEventID(), EventType: "login.success", Success: true})
	sink.Emit(context.Background(), Event{ID: NewEventID(), EventType: "logout", Success: true})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	var event Event
	if err := json.Unmarshal([]byte(lines[0]), &event); err != nil {
		t.Fatalf("line not valid JSON: %v", err)
	}
	if event.EventType != "login.success" {
		t.Fatalf("event type %q", event.EventType)
	}
}

func TestDispatcherDeliversAndDrains(t *testing.T) {
	sink := NewChannelSink(8)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 8, DropIfFull: true}, sink)

	for i := 0; i < 3; i++ {
		d.Emit(context.Background(), Event{EventType: "login.success"})
	}
	d.Close()

	delivered := 0
	timeout := time.After(time.Second)
	for delivered < 3 {
		select {
		case <-sink.Events():
			delivered++
		case <-timeout:
			t.Fatalf("delivered %d of 3 before timeout", delivered)
		}
	}
}

func TestDispatcherDropsUnderBackpressure(t *testing.T) {
	// An unread channel sink with capacity 1 blocks the worker; subsequent
	// emits overflow the dispatcher buffer and must be counted as dropped.
	sink := NewChannelSink(1)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	for i := 0; i < 50; i++ {
		d.Emit(context.Background(), Event{EventType: "login.failure"})
	}

	deadline := time.Now().Add(time.Second)
	for d.Dropped() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no events reported dropped")
		}
		time.Sleep(time.Millisecond)
	}

	// Unpark the worker from its blocked sink write so Close can join it.
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-sink.Events():
			case <-done:
				return
			}
		}
	}()
	d.Close()
	close(done)
}

func TestDisabledDispatcherIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, NoOpSink{})
	if d != nil {
		t.Fatal("disabled dispatcher must be nil")
	}
	// All operations on a nil dispatcher are no-ops.
	d.Emit(context.Background(), Event{})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher reported drops")
	}
}

func TestNewEventIDUniqueAndSortable(t *testing.T) {
	a := NewEventID()
	b := NewEventID()
	if a == b {
		t.Fatal("event ids collided")
	}
	if len(a) != 26 {
		t.Fatalf("unexpected id length %d", len(a))
	}
}
