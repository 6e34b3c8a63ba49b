package server

import (
	"testing"
	"time"
)

func TestStatusHubTracksCurrent(t *testing.T) {
	h := newStatusHub()
	if got := h.Current().Status; got != statusOffline {
		t.Fatalf("initial status = %q, want offline", got)
	}

	go h.run()
	h.broadcast <- statusMessage{Status: statusOnline}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if h.Current().Status == statusOnline {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Errorf("status = %q, want online after broadcast", h.Current().Status)
}
