package core

import (
	"context"
	"testing"
	"time"
)

func startHub(t *testing.T, opts Options) *Hub {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(nil, opts)
	go hub.Run(ctx)
	return hub
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev, ok := <-ch:
			if !ok {
				t.Fatalf("events channel closed while waiting for kind %v", kind)
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustAck(t *testing.T, ch <-chan Ack) Ack {
	t.Helper()

	select {
	case ack := <-ch:
		return ack
	case <-time.After(2 * time.Second):
		t.Fatal("expected ack not received")
	}
	return Ack{}
}

// ackCmd attaches a reply channel and submits the command.
func ackCmd(c *Client, cmd *Command) <-chan Ack {
	reply := make(chan Ack, 1)
	cmd.Reply = reply
	c.Commands <- cmd
	return reply
}

// collectEvents drains buffered events until the stream stays quiet.
func collectEvents(ch <-chan *Event) []*Event {
	var events []*Event
	quiet := 0
	for quiet < 10 {
		select {
		case ev, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, ev)
			quiet = 0
		default:
			time.Sleep(10 * time.Millisecond)
			quiet++
		}
	}
	return events
}

func countKind(events []*Event, kind EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}
