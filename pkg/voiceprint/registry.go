package voiceprint

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// ErrNoEnrollments is returned by Identify when the registry is empty.
var ErrNoEnrollments = errors.New("voiceprint: no enrolled speakers")

// ErrInvalidSpeaker is returned for an empty speaker name or one containing
// ':' or a newline.
var ErrInvalidSpeaker = errors.New("voiceprint: invalid speaker name")

// Registry enrolls speakers and identifies embeddings against them.
type Registry struct {
	store     Store
	hasher    *Hasher
	threshold float64
	now       func() time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithHasher attaches an LSH hasher; enrollments then carry a voice hash.
func WithHasher(h *Hasher) RegistryOption {
	return func(r *Registry) { r.hasher = h }
}

// WithIdentifyThreshold sets the match threshold used by Identify.
// Default: DefaultThreshold.
func WithIdentifyThreshold(t float64) RegistryOption {
	return func(r *Registry) { r.threshold = t }
}

// NewRegistry creates a Registry over store.
func NewRegistry(store Store, opts ...RegistryOption) *Registry {
	r := &Registry{
		store:     store,
		threshold: DefaultThreshold,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Enroll stores emb as a new enrollment of speaker. source records where
// the embedding came from (usually an audio path).
func (r *Registry) Enroll(ctx context.Context, speaker, source string, emb []float32) (*Enrollment, error) {
	if err := checkSpeaker(speaker); err != nil {
		return nil, err
	}
	if _, err := Normalize(emb); err != nil {
		return nil, err
	}
	e := Enrollment{
		ID:        uuid.NewString(),
		Speaker:   speaker,
		Source:    source,
		Embedding: slices.Clone(emb),
		CreatedAt: r.now().UTC(),
	}
	if r.hasher != nil {
		h, err := r.hasher.Hash(emb)
		if err != nil {
			return nil, err
		}
		e.Hash = h
	}
	if err := r.store.Put(ctx, e); err != nil {
		return nil, fmt.Errorf("voiceprint: store enrollment: %w", err)
	}
	return &e, nil
}

// Speakers returns the enrolled speaker names.
func (r *Registry) Speakers(ctx context.Context) ([]string, error) {
	return r.store.Speakers(ctx)
}

// Enrollments returns the enrollments of speaker, or all when empty.
func (r *Registry) Enrollments(ctx context.Context, speaker string) ([]Enrollment, error) {
	return r.store.List(ctx, speaker)
}

// Remove deletes every enrollment of speaker.
func (r *Registry) Remove(ctx context.Context, speaker string) (int, error) {
	if err := checkSpeaker(speaker); err != nil {
		return 0, err
	}
	return r.store.DeleteSpeaker(ctx, speaker)
}

// Score is the similarity of a probe to one enrolled speaker.
type Score struct {
	Speaker     string  `json:"speaker" yaml:"speaker"`
	Similarity  float64 `json:"similarity" yaml:"similarity"`
	Enrollments int     `json:"enrollments" yaml:"enrollments"`
}

// Identification is the result of Identify.
type Identification struct {
	// Speaker is the best scoring speaker. It is set even when Match is
	// false.
	Speaker  string `json:"speaker" yaml:"speaker"`
	Decision `yaml:",inline"`
	// Scores lists every speaker, most similar first.
	Scores []Score `json:"scores" yaml:"scores"`
}

// Identify compares emb with the centroid of each enrolled speaker.
func (r *Registry) Identify(ctx context.Context, emb []float32) (*Identification, error) {
	all, err := r.store.List(ctx, "")
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, ErrNoEnrollments
	}

	groups := make(map[string][][]float32)
	for _, e := range all {
		groups[e.Speaker] = append(groups[e.Speaker], e.Embedding)
	}

	scores := make([]Score, 0, len(groups))
	for speaker, embs := range groups {
		c, err := Centroid(embs)
		if err != nil {
			return nil, fmt.Errorf("voiceprint: speaker %s: %w", speaker, err)
		}
		sim, err := CosineSimilarity(emb, c)
		if err != nil {
			return nil, err
		}
		scores = append(scores, Score{Speaker: speaker, Similarity: sim, Enrollments: len(embs)})
	}
	slices.SortFunc(scores, func(a, b Score) int {
		return cmp.Or(cmp.Compare(b.Similarity, a.Similarity), cmp.Compare(a.Speaker, b.Speaker))
	})

	best := scores[0]
	return &Identification{
		Speaker:  best.Speaker,
		Decision: Decision{Similarity: best.Similarity, Match: best.Similarity > r.threshold},
		Scores:   scores,
	}, nil
}
