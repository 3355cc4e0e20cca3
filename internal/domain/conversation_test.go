package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestCanonicalPairStableOrder(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	x1, y1 := CanonicalPair(a, b)
	x2, y2 := CanonicalPair(b, a)
	if x1 != x2 || y1 != y2 {
		t.Fatalf("canonical pair depends on argument order: (%s,%s) vs (%s,%s)", x1, y1, x2, y2)
	}
	if x1 != a || y1 != b {
		t.Fatalf("expected lower id first, got (%s,%s)", x1, y1)
	}
}

func TestCanonicalPairSame(t *testing.T) {
	a := uuid.New()
	x, y := CanonicalPair(a, a)
	if x != a || y != a {
		t.Fatalf("got (%s,%s)", x, y)
	}
}

func TestCanSend(t *testing.T) {
	initiator := uuid.New()
	other := uuid.New()
	stranger := uuid.New()
	aID, bID := CanonicalPair(initiator, other)

	cases := []struct {
		name   string
		status string
		sender uuid.UUID
		want   bool
	}{
		{"initiated initiator blocked", ConversationInitiated, initiator, false},
		{"initiated counterpart may reply", ConversationInitiated, other, true},
		{"accepted initiator", ConversationAccepted, initiator, true},
		{"accepted counterpart", ConversationAccepted, other, true},
		{"blocked initiator", ConversationBlocked, initiator, false},
		{"blocked counterpart", ConversationBlocked, other, false},
		{"non participant", ConversationAccepted, stranger, false},
	}
	for _, tc := range cases {
		c := &Conversation{
			ProfileAID:  aID,
			ProfileBID:  bID,
			Status:      tc.status,
			InitiatorID: initiator,
		}
		if got := c.CanSend(tc.sender); got != tc.want {
			t.Errorf("%s: CanSend=%v want %v", tc.name, got, tc.want)
		}
	}
}

func TestCounterpartOf(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	aID, bID := CanonicalPair(a, b)
	c := &Conversation{ProfileAID: aID, ProfileBID: bID, InitiatorID: a}

	if got, ok := c.CounterpartOf(aID); !ok || got != bID {
		t.Fatalf("counterpart of a: got %s ok=%v", got, ok)
	}
	if got, ok := c.CounterpartOf(bID); !ok || got != aID {
		t.Fatalf("counterpart of b: got %s ok=%v", got, ok)
	}
	if _, ok := c.CounterpartOf(uuid.New()); ok {
		t.Fatal("expected no counterpart for stranger")
	}
}
