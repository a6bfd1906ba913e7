package session

import (
	"testing"
)

func TestHistoryAdd(t *testing.T) {
	h := NewHistory()
	if h.Count() != 0 {
		t.Fatalf("new history Count() = %d, want 0", h.Count())
	}

	h.Add("question one", "answer one")
	h.Add("question two", "answer two")

	if h.Count() != 4 {
		t.Errorf("Count() = %d, want 4", h.Count())
	}

	entries := h.Entries()
	want := []Entry{
		{Role: RoleUser, Content: "question one"},
		{Role: RoleAssistant, Content: "answer one"},
		{Role: RoleUser, Content: "question two"},
		{Role: RoleAssistant, Content: "answer two"},
	}
	if len(entries) != len(want) {
		t.Fatalf("Entries() len = %d, want %d", len(entries), len(want))
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("Entries()[%d] = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestHistoryMessagesReturnsCopy(t *testing.T) {
	h := NewHistory()
	h.Add("q", "a")

	msgs := h.Messages()
	msgs[0] = nil

	if got := h.Messages()[0]; got == nil {
		t.Error("mutating the returned slice affected stored history")
	}
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory()
	h.Add("q", "a")
	h.Clear()

	if h.Count() != 0 {
		t.Errorf("Count() after Clear = %d, want 0", h.Count())
	}
	if len(h.Entries()) != 0 {
		t.Errorf("Entries() after Clear = %v, want empty", h.Entries())
	}
}

func TestHistoryConcurrentAccess(t *testing.T) {
	h := NewHistory()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			h.Add("q", "a")
		}
	}()
	for i := 0; i < 100; i++ {
		_ = h.Messages()
		_ = h.Count()
	}
	<-done

	if h.Count() != 200 {
		t.Errorf("Count() = %d, want 200", h.Count())
	}
}
