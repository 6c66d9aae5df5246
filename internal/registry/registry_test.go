package registry

import (
	"context"
	"testing"

	"messenger-service/internal/models"
)

type fakeHandle struct{ pushed int }

func (f *fakeHandle) Push(ctx context.Context, event models.Event) error {
	f.pushed++
	return nil
}

func TestRegisterAndLookup(t *testing.T) {
	reg := New()

	h := &fakeHandle{}
	if prev := reg.Register(1, h); prev != nil {
		t.Fatalf("expected no displaced handle on first register")
	}

	got, ok := reg.Lookup(1)
	if !ok || got != h {
		t.Fatalf("expected lookup to return registered handle")
	}
	if _, ok := reg.Lookup(2); ok {
		t.Fatalf("expected lookup miss for unknown user")
	}
}

func TestRegisterReplacesPreviousHandle(t *testing.T) {
	reg := New()

	first := &fakeHandle{}
	second := &fakeHandle{}
	reg.Register(1, first)

	prev := reg.Register(1, second)
	if prev != first {
		t.Fatalf("expected replacement to return the displaced handle")
	}

	got, ok := reg.Lookup(1)
	if !ok || got != second {
		t.Fatalf("expected the newest handle to win")
	}
}

func TestUnregisterIgnoresStaleHandle(t *testing.T) {
	reg := New()

	stale := &fakeHandle{}
	current := &fakeHandle{}
	reg.Register(1, stale)
	reg.Register(1, current)

	if reg.Unregister(1, stale) {
		t.Fatalf("expected stale unregister to be rejected")
	}
	if _, ok := reg.Lookup(1); !ok {
		t.Fatalf("expected current handle to survive stale unregister")
	}

	if !reg.Unregister(1, current) {
		t.Fatalf("expected matching unregister to succeed")
	}
	if _, ok := reg.Lookup(1); ok {
		t.Fatalf("expected user to be offline after unregister")
	}
	if reg.Active() != 0 {
		t.Fatalf("expected no active connections")
	}
}
