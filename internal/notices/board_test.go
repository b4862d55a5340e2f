package notices

import "testing"

func TestBoardDrain(t *testing.T) {
	var b Board

	if got := b.Drain(); len(got) != 0 || got == nil {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}

	b.Alert("first")
	b.Alert("second")

	got := b.Drain()
	if len(got) != 2 || got[0].Message != "first" || got[1].Message != "second" {
		t.Fatalf("unexpected notices: %#v", got)
	}
	if got[0].ID == "" || got[0].ID == got[1].ID {
		t.Fatalf("expected distinct ids")
	}
	if len(b.Drain()) != 0 {
		t.Fatalf("drain must clear pending notices")
	}
}
