package docstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/niio972/phis-ws/internal/apperr"
	"github.com/niio972/phis-ws/internal/page"
	"github.com/niio972/phis-ws/internal/rdf"
)

// Data is one measurement of a variable, optionally on a scientific object.
type Data struct {
	URI           string    `msgpack:"uri" json:"uri" yaml:"uri"`
	ProvenanceURI string    `msgpack:"provenance_uri" json:"provenanceUri" yaml:"provenanceUri"`
	ObjectURI     string    `msgpack:"object_uri,omitempty" json:"objectUri,omitempty" yaml:"objectUri"`
	VariableURI   string    `msgpack:"variable_uri" json:"variableUri" yaml:"variableUri"`
	Date          time.Time `msgpack:"date" json:"date" yaml:"date"`
	Value         any       `msgpack:"value" json:"value" yaml:"value"`
}

// Validate checks identifiers and the required date and value.
func (d Data) Validate() error {
	for _, f := range []struct{ name, iri string }{
		{"provenanceUri", d.ProvenanceURI},
		{"variableUri", d.VariableURI},
	} {
		if err := rdf.ValidateIRI(f.iri); err != nil {
			return apperr.Validation(f.name, "%v", err)
		}
	}
	if d.ObjectURI != "" {
		if err := rdf.ValidateIRI(d.ObjectURI); err != nil {
			return apperr.Validation("objectUri", "%v", err)
		}
	}
	if d.Date.IsZero() {
		return apperr.Validation("date", "date is required")
	}
	if d.Value == nil {
		return apperr.Validation("value", "value is required")
	}
	return nil
}

// DataFilter selects measurements. Zero fields are unconstrained; a
// non-empty Objects or Provenances list restricts to its members.
type DataFilter struct {
	Variable    string
	Start       time.Time // inclusive
	End         time.Time // inclusive
	Objects     []string
	Provenances []string
	DateSortAsc bool
}

// Matches reports whether d satisfies every constraint of f.
func (f DataFilter) Matches(d Data) bool {
	if f.Variable != "" && d.VariableURI != f.Variable {
		return false
	}
	if !f.Start.IsZero() && d.Date.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && d.Date.After(f.End) {
		return false
	}
	if len(f.Objects) > 0 && !containsString(f.Objects, d.ObjectURI) {
		return false
	}
	if len(f.Provenances) > 0 && !containsString(f.Provenances, d.ProvenanceURI) {
		return false
	}
	return true
}

func (f DataFilter) prefix() string {
	if f.Variable == "" {
		return dataPrefix
	}
	return dataPrefix + f.Variable + "\x00"
}

// less orders by date, in the direction the filter asks for, then by URI.
func (f DataFilter) less(a, b Data) bool {
	if !a.Date.Equal(b.Date) {
		if f.DateSortAsc {
			return a.Date.Before(b.Date)
		}
		return a.Date.After(b.Date)
	}
	return a.URI < b.URI
}

func containsString(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// PutData stores measurements in one transaction and returns their URIs
// in input order. URIs are minted from the measurement identity, so
// storing the same measurement twice keeps one record. Every provenance
// referenced must already be stored.
func (s *Store) PutData(ctx context.Context, data []Data) (uris []string, err error) {
	defer func(start time.Time) { s.observe("put_data", start, err) }(time.Now())

	for _, d := range data {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}

	uris = make([]string, len(data))
	err = s.db.Update(func(txn *badger.Txn) error {
		for i, d := range data {
			if _, err := txn.Get([]byte(provenancePrefix + d.ProvenanceURI)); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return apperr.Validation(d.ProvenanceURI, "unknown provenance")
				}
				return err
			}

			id, err := DataID(d.ProvenanceURI, d.ObjectURI, d.VariableURI, d.Date)
			if err != nil {
				return err
			}
			d.URI = DefaultDataURIPrefix + id
			d.Date = d.Date.UTC()

			val, err := encode(d)
			if err != nil {
				return fmt.Errorf("encode data %s: %w", d.URI, err)
			}
			key := dataPrefix + d.VariableURI + "\x00" + d.URI
			if err := txn.Set([]byte(key), val); err != nil {
				return err
			}
			uris[i] = d.URI
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("put data", err)
	}
	return uris, nil
}

// CountData returns the number of measurements matching f.
func (s *Store) CountData(ctx context.Context, f DataFilter) (n int, err error) {
	defer func(start time.Time) { s.observe("count_data", start, err) }(time.Now())

	err = s.scanData(ctx, f, func(Data) { n++ })
	if err != nil {
		return 0, err
	}
	return n, nil
}

// FindData returns the requested page of measurements matching f, ordered
// by date then URI. Returns an empty slice (not nil) when nothing matches.
func (s *Store) FindData(ctx context.Context, f DataFilter, req page.Request) (data []Data, err error) {
	defer func(start time.Time) { s.observe("find_data", start, err) }(time.Now())

	if err := req.Validate(); err != nil {
		return nil, err
	}

	var matched []Data
	err = s.scanData(ctx, f, func(d Data) { matched = append(matched, d) })
	if err != nil {
		return nil, err
	}
	sort.Slice(matched, func(i, j int) bool { return f.less(matched[i], matched[j]) })
	return window(matched, req), nil
}

func (s *Store) scanData(ctx context.Context, f DataFilter, fn func(Data)) error {
	err := s.scan(ctx, f.prefix(), func(val []byte) error {
		var d Data
		if err := decode(val, &d); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
		d.Date = d.Date.UTC()
		if f.Matches(d) {
			fn(d)
		}
		return nil
	})
	if err != nil {
		return storeErr("scan data", err)
	}
	return nil
}

// dateOnly is the calendar-date form accepted alongside RFC 3339.
const dateOnly = "2006-01-02"

// ParseStart parses the lower bound of a date range. A calendar date means
// the start of that day in UTC.
func ParseStart(s string) (time.Time, error) {
	return parseBound("startDate", s, 0)
}

// ParseEnd parses the upper bound of a date range. A calendar date means
// the last instant of that day in UTC.
func ParseEnd(s string) (time.Time, error) {
	return parseBound("endDate", s, 24*time.Hour-time.Nanosecond)
}

func parseBound(name, s string, dayOffset time.Duration) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateOnly, s)
	if err != nil {
		return time.Time{}, apperr.Validation(name, "%s %q is neither YYYY-MM-DD nor RFC 3339", name, s)
	}
	return t.Add(dayOffset), nil
}
