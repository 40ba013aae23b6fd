package voiceprint

import (
	"context"
	"errors"
	"testing"
	"time"
)

// newBadgerTestStore creates an in-memory badger Store for testing.
func newBadgerTestStore(t *testing.T) Store {
	t.Helper()
	s, err := NewBadgerStore(BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatalf("NewBadgerStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func storeImpls(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemoryStore(),
		"badger": newBadgerTestStore(t),
	}
}

func TestStorePutList(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for name, s := range storeImpls(t) {
		t.Run(name, func(t *testing.T) {
			put := func(speaker, id string, emb ...float32) {
				t.Helper()
				err := s.Put(ctx, Enrollment{ID: id, Speaker: speaker, Source: id + ".wav", Embedding: emb, CreatedAt: created})
				if err != nil {
					t.Fatalf("Put: %v", err)
				}
			}
			put("bob", "2", 0, 1)
			put("alice", "b", 1, 0)
			put("alice", "a", 1, 1)

			got, err := s.List(ctx, "alice")
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
				t.Fatalf("List(alice) = %+v", got)
			}
			if got[0].Source != "a.wav" || !got[0].CreatedAt.Equal(created) {
				t.Errorf("round trip lost fields: %+v", got[0])
			}
			if len(got[1].Embedding) != 2 || got[1].Embedding[0] != 1 {
				t.Errorf("embedding = %v", got[1].Embedding)
			}

			all, err := s.List(ctx, "")
			if err != nil {
				t.Fatal(err)
			}
			if len(all) != 3 {
				t.Errorf("List(all) returned %d", len(all))
			}

			// Replace by ID.
			put("alice", "a", 5, 5)
			got, _ = s.List(ctx, "alice")
			if len(got) != 2 || got[0].Embedding[0] != 5 {
				t.Errorf("replace failed: %+v", got)
			}
		})
	}
}

func TestStoreSpeakersAndDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range storeImpls(t) {
		t.Run(name, func(t *testing.T) {
			for _, e := range []Enrollment{
				{ID: "1", Speaker: "carol", Embedding: []float32{1}},
				{ID: "2", Speaker: "a-b", Embedding: []float32{1}},
				{ID: "3", Speaker: "a", Embedding: []float32{1}},
				{ID: "4", Speaker: "a", Embedding: []float32{1}},
			} {
				if err := s.Put(ctx, e); err != nil {
					t.Fatal(err)
				}
			}
			speakers, err := s.Speakers(ctx)
			if err != nil {
				t.Fatal(err)
			}
			want := []string{"a", "a-b", "carol"}
			if len(speakers) != len(want) {
				t.Fatalf("Speakers = %v, want %v", speakers, want)
			}
			for i := range want {
				if speakers[i] != want[i] {
					t.Fatalf("Speakers = %v, want %v", speakers, want)
				}
			}

			n, err := s.DeleteSpeaker(ctx, "a")
			if err != nil {
				t.Fatal(err)
			}
			if n != 2 {
				t.Errorf("DeleteSpeaker removed %d, want 2", n)
			}
			// "a-b" shares a prefix with "a" and must survive.
			rest, _ := s.List(ctx, "a-b")
			if len(rest) != 1 {
				t.Errorf("a-b enrollments = %d, want 1", len(rest))
			}
			n, err = s.DeleteSpeaker(ctx, "nobody")
			if err != nil || n != 0 {
				t.Errorf("DeleteSpeaker(nobody) = %d, %v", n, err)
			}
		})
	}
}

func TestStoreDeleteEmptySpeaker(t *testing.T) {
	ctx := context.Background()
	for name, s := range storeImpls(t) {
		t.Run(name, func(t *testing.T) {
			for _, e := range []Enrollment{
				{ID: "1", Speaker: "alice", Embedding: []float32{1}},
				{ID: "2", Speaker: "bob", Embedding: []float32{1}},
			} {
				if err := s.Put(ctx, e); err != nil {
					t.Fatal(err)
				}
			}
			n, err := s.DeleteSpeaker(ctx, "")
			if !errors.Is(err, ErrInvalidSpeaker) {
				t.Fatalf("DeleteSpeaker(\"\") error = %v, want ErrInvalidSpeaker", err)
			}
			if n != 0 {
				t.Errorf("DeleteSpeaker(\"\") removed %d", n)
			}
			all, err := s.List(ctx, "")
			if err != nil {
				t.Fatal(err)
			}
			if len(all) != 2 {
				t.Errorf("%d enrollments left, want 2", len(all))
			}
		})
	}
}

func TestBadgerStorePersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewBadgerStore(BadgerOptions{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, Enrollment{ID: "x", Speaker: "dave", Embedding: []float32{0.5, 0.25}}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = NewBadgerStore(BadgerOptions{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.List(ctx, "dave")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Embedding[1] != 0.25 {
		t.Fatalf("after reopen: %+v", got)
	}
}

func TestNewBadgerStoreRequiresDir(t *testing.T) {
	if _, err := NewBadgerStore(BadgerOptions{}); err == nil {
		t.Fatal("expected error without Dir")
	}
}
