package voiceprint

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Enrollment is one labeled embedding.
type Enrollment struct {
	ID        string    `msgpack:"id" json:"id" yaml:"id"`
	Speaker   string    `msgpack:"speaker" json:"speaker" yaml:"speaker"`
	Source    string    `msgpack:"source,omitempty" json:"source,omitempty" yaml:"source,omitempty"`
	Hash      string    `msgpack:"hash,omitempty" json:"hash,omitempty" yaml:"hash,omitempty"`
	Embedding []float32 `msgpack:"embedding" json:"-" yaml:"-"`
	CreatedAt time.Time `msgpack:"created_at" json:"created_at" yaml:"created_at"`
}

// Store persists enrollments. Implementations must be safe for concurrent
// use.
type Store interface {
	// Put inserts or replaces the enrollment with e.ID under e.Speaker.
	Put(ctx context.Context, e Enrollment) error

	// List returns the enrollments of speaker ordered by ID, or of every
	// speaker when speaker is empty.
	List(ctx context.Context, speaker string) ([]Enrollment, error)

	// Speakers returns the enrolled speaker names in ascending order.
	Speakers(ctx context.Context) ([]string, error)

	// DeleteSpeaker removes every enrollment of speaker and returns how
	// many were removed. An empty speaker is rejected with
	// ErrInvalidSpeaker.
	DeleteSpeaker(ctx context.Context, speaker string) (int, error)

	// Close releases the store.
	Close() error
}

func enrollmentKey(speaker, id string) []byte {
	return []byte("enroll:" + speaker + ":" + id)
}

func speakerPrefix(speaker string) []byte {
	if speaker == "" {
		return []byte("enroll:")
	}
	return []byte("enroll:" + speaker + ":")
}

// checkSpeaker rejects names that would break the "enroll:<speaker>:<id>"
// key layout.
func checkSpeaker(speaker string) error {
	if speaker == "" || strings.ContainsAny(speaker, ":\n") {
		return fmt.Errorf("%w: %q", ErrInvalidSpeaker, speaker)
	}
	return nil
}
