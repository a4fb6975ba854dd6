package guardstore

import (
	"context"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	got, err := s.Get(ctx, "absent")
	if err != nil || got != nil {
		t.Errorf("absent key: got %v, %v; want nil, nil", got, err)
	}

	if err := s.Set(ctx, "k", []byte(`{"attempts":2}`)); err != nil {
		t.Fatal(err)
	}

	got, err = s.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"attempts":2}` {
		t.Errorf("got %s", got)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Get(ctx, "k")
	if got != nil {
		t.Error("deleted key should read as absent")
	}
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	val := []byte("abc")
	s.Set(ctx, "k", val)
	val[0] = 'z'

	got, _ := s.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value aliased caller buffer: %s", got)
	}

	got[0] = 'y'
	again, _ := s.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("returned value aliased stored buffer: %s", again)
	}
}
