package voiceprint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// BadgerStore is a Store backed by BadgerDB v4. Values are msgpack-encoded
// enrollments under keys "enroll:<speaker>:<id>".
type BadgerStore struct {
	db *badger.DB
}

// BadgerOptions configures a BadgerStore.
type BadgerOptions struct {
	// Dir is the directory for BadgerDB data files. Required unless
	// InMemory is set.
	Dir string

	// InMemory runs BadgerDB without disk persistence.
	InMemory bool

	// Logger receives badger's warnings and errors. If nil, uses
	// slog.Default().
	Logger *slog.Logger
}

// NewBadgerStore opens (or creates) a BadgerStore.
func NewBadgerStore(opts BadgerOptions) (*BadgerStore, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("voiceprint: BadgerOptions.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		dbOpts = badger.DefaultOptions("").WithInMemory(true)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	dbOpts = dbOpts.WithLogger(badgerLogger{logger})
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("voiceprint: open registry: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Put(_ context.Context, e Enrollment) error {
	val, err := msgpack.Marshal(&e)
	if err != nil {
		return fmt.Errorf("voiceprint: encode enrollment: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(enrollmentKey(e.Speaker, e.ID), val)
	})
}

func (s *BadgerStore) List(ctx context.Context, speaker string) ([]Enrollment, error) {
	var out []Enrollment
	err := s.scan(ctx, speakerPrefix(speaker), true, func(_ []byte, val []byte) error {
		var e Enrollment
		if err := msgpack.Unmarshal(val, &e); err != nil {
			return fmt.Errorf("voiceprint: decode enrollment: %w", err)
		}
		out = append(out, e)
		return nil
	})
	return out, err
}

func (s *BadgerStore) Speakers(ctx context.Context) ([]string, error) {
	var out []string
	prefix := speakerPrefix("")
	err := s.scan(ctx, prefix, false, func(key, _ []byte) error {
		rest := key[len(prefix):]
		// Speaker names never contain ':'; the ID follows the last one.
		i := bytes.LastIndexByte(rest, ':')
		if i < 0 {
			return nil
		}
		out = append(out, string(rest[:i]))
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

func (s *BadgerStore) DeleteSpeaker(ctx context.Context, speaker string) (int, error) {
	// An empty name would widen the prefix to every enrollment.
	if err := checkSpeaker(speaker); err != nil {
		return 0, err
	}
	var keys [][]byte
	if err := s.scan(ctx, speakerPrefix(speaker), false, func(key, _ []byte) error {
		keys = append(keys, key)
		return nil
	}); err != nil {
		return 0, err
	}
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return 0, err
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// scan calls fn with a copy of every key (and value, when values is set)
// under prefix, in key order.
func (s *BadgerStore) scan(ctx context.Context, prefix []byte, values bool, fn func(key, val []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = prefix
		iterOpts.PrefetchValues = values
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			var val []byte
			if values {
				v, err := item.ValueCopy(nil)
				if err != nil {
					return err
				}
				val = v
			}
			if err := fn(item.KeyCopy(nil), val); err != nil {
				return err
			}
		}
		return nil
	})
}

// badgerLogger forwards badger's log output to slog. Info and debug
// messages are logged at debug level.
type badgerLogger struct {
	l *slog.Logger
}

func (b badgerLogger) Errorf(f string, v ...any) {
	b.l.Error("badger: " + trimNewline(fmt.Sprintf(f, v...)))
}

func (b badgerLogger) Warningf(f string, v ...any) {
	b.l.Warn("badger: " + trimNewline(fmt.Sprintf(f, v...)))
}

func (b badgerLogger) Infof(f string, v ...any) {
	b.l.Debug("badger: " + trimNewline(fmt.Sprintf(f, v...)))
}

func (b badgerLogger) Debugf(f string, v ...any) {
	b.l.Debug("badger: " + trimNewline(fmt.Sprintf(f, v...)))
}

func trimNewline(s string) string {
	return strings.TrimRight(s, "\n")
}
