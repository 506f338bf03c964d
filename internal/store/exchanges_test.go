package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/lowember/ember/internal/session"
)

// DB must be usable wherever the engine expects a journal.
var _ session.Journal = (*DB)(nil)

func TestAppendAndList(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		ex := session.Exchange{
			Text:  fmt.Sprintf("text-%d", i),
			Reply: fmt.Sprintf("reply-%d", i),
			Mode:  session.ModeStay,
			At:    at.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Append(ctx, "tok-a", ex); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := db.Append(ctx, "tok-b", session.Exchange{Text: "b", Mode: session.ModePress}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	all, err := db.List(ctx, "tok-a", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("got %d exchanges, want 4", len(all))
	}
	for i, ex := range all {
		if want := fmt.Sprintf("text-%d", i); ex.Text != want {
			t.Errorf("all[%d].Text = %q, want %q", i, ex.Text, want)
		}
	}
	if !all[0].At.Equal(at) {
		t.Errorf("all[0].At = %v, want %v", all[0].At, at)
	}

	last, err := db.List(ctx, "tok-a", 2)
	if err != nil {
		t.Fatalf("List limit: %v", err)
	}
	if len(last) != 2 || last[0].Text != "text-2" || last[1].Text != "text-3" {
		t.Errorf("List(limit=2) = %+v, want text-2, text-3", last)
	}
}

func TestListUnknownToken(t *testing.T) {
	db := testDB(t)

	got, err := db.List(context.Background(), "nobody", 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d exchanges, want 0", len(got))
	}
}

func TestCountsAndModes(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	db.Append(ctx, "a", session.Exchange{Text: "1", Mode: session.ModePress})
	db.Append(ctx, "a", session.Exchange{Text: "2", Mode: session.ModePress})
	db.Append(ctx, "a", session.Exchange{Text: "3", Mode: session.ModeSilence})
	db.Append(ctx, "b", session.Exchange{Text: "4", Mode: session.ModeStay})

	n, err := db.CountExchanges(ctx, "a")
	if err != nil {
		t.Fatalf("CountExchanges: %v", err)
	}
	if n != 3 {
		t.Errorf("CountExchanges(a) = %d, want 3", n)
	}

	modes, err := db.ModeCounts(ctx)
	if err != nil {
		t.Fatalf("ModeCounts: %v", err)
	}
	want := map[string]int{"press": 2, "silence": 1, "stay": 1}
	for mode, c := range want {
		if modes[mode] != c {
			t.Errorf("ModeCounts[%s] = %d, want %d", mode, modes[mode], c)
		}
	}
}
