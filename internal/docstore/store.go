package docstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/niio972/phis-ws/internal/apperr"
	"github.com/niio972/phis-ws/internal/metrics"
)

const (
	provenancePrefix = "prov\x00"
	dataPrefix       = "data\x00"
)

// Options configures the document store.
type Options struct {
	// Dir is the directory for BadgerDB data files.
	// Required unless InMemory is set.
	Dir string

	// InMemory runs BadgerDB without disk persistence.
	InMemory bool

	// Logger receives badger's warnings and errors.
	Logger zerolog.Logger

	// Metrics records every store call when set.
	Metrics *metrics.Metrics

	// Now stamps new provenances. Defaults to time.Now.
	Now func() time.Time
}

// Store is the BadgerDB-backed provenance and data store.
type Store struct {
	db      *badger.DB
	metrics *metrics.Metrics
	now     func() time.Time
}

// Open opens or creates the store described by opts.
func Open(opts Options) (*Store, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("docstore: Options.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir).WithLogger(badgerLogger{log: opts.Logger})
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true).WithDir("").WithValueDir("")
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{db: db, metrics: opts.Metrics, now: now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) observe(operation string, start time.Time, err error) {
	s.metrics.RecordStoreCall("badger", operation, time.Since(start), err)
}

// get decodes the document under key into v. found is false when the key
// is absent.
func (s *Store) get(key string, v any) (found bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return decode(val, v)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// scan calls fn with every value stored under prefix, in key order. The
// slice passed to fn is only valid for the duration of the call.
func (s *Store) scan(ctx context.Context, prefix string, fn func(val []byte) error) error {
	p := []byte(prefix)
	return s.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = p
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := it.Item().Value(fn); err != nil {
				return err
			}
		}
		return nil
	})
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decode reads numbers stored behind interface{} fields as int64, uint64
// or float64, whatever width they were written with.
func decode(b []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.UseLooseInterfaceDecoding(true)
	return dec.Decode(v)
}

// storeErr passes through taxonomy errors and wraps the rest as store
// failures.
func storeErr(op string, err error) error {
	if apperr.CodeOf(err) != "" {
		return err
	}
	return apperr.StoreFailure(op, err)
}

// badgerLogger routes badger's own logging into zerolog.
type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) Errorf(f string, v ...interface{}) {
	l.log.Error().Str("component", "badger").Msgf(strings.TrimSpace(f), v...)
}

func (l badgerLogger) Warningf(f string, v ...interface{}) {
	l.log.Warn().Str("component", "badger").Msgf(strings.TrimSpace(f), v...)
}

func (l badgerLogger) Infof(string, ...interface{})  {}
func (l badgerLogger) Debugf(string, ...interface{}) {}
