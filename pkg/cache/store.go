// Package cache implements the durable TTL fragment store.
//
// The store maps a release identifier to named data fragments, each
// stamped with the time it was fetched. It persists as a single UTF-8
// JSON document written atomically (temp file + rename), and treats any
// unreadable or malformed persisted state as an empty store rather than
// an error: a corrupt cache costs refetches, never a failed run.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Field labels for the fragments the pipeline caches. Freshness is
// evaluated per field: a release may hold a fresh release_details
// fragment next to a stale marketplace_stats one.
const (
	FieldMarketplaceStats = "marketplace_stats"
	FieldReleaseDetails   = "release_details"
)

// Version is the on-disk document format version.
const Version = 1

// Fragment is one named, timestamped unit of cached data for a release.
// Data is kept raw so the persisted shape is exactly what the normalizer
// produced, independent of how it is later decoded.
type Fragment struct {
	FetchedAt string          `json:"fetched_at"`
	Data      json.RawMessage `json:"data"`
}

// Entry holds the fragments cached for a single release, keyed by field
// label.
type Entry map[string]Fragment

// root is the persisted document shape.
type root struct {
	Version   int              `json:"version"`
	UpdatedAt string           `json:"updated_at"`
	Releases  map[string]Entry `json:"releases"`
}

// Store owns the cache document. Callers read and mutate entries through
// its methods only; the single-threaded pipeline needs no locking here.
type Store struct {
	root root
	now  func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	s := &Store{now: time.Now}
	s.root = freshRoot(s.now())
	return s
}

func freshRoot(now time.Time) root {
	return root{
		Version:   Version,
		UpdatedAt: stamp(now),
		Releases:  map[string]Entry{},
	}
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// Load reads persisted state from path. It never fails: a missing,
// unreadable, or malformed file yields an empty store.
func Load(path string) *Store {
	s := NewStore()

	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}

	var r root
	if err := json.Unmarshal(data, &r); err != nil {
		return s
	}
	if r.Version == 0 {
		r.Version = Version
	}
	if r.UpdatedAt == "" {
		r.UpdatedAt = stamp(s.now())
	}
	if r.Releases == nil {
		r.Releases = map[string]Entry{}
	}
	s.root = r
	return s
}

// Save stamps updated_at and writes the document to path via a temporary
// file and an atomic rename, so the target is never left partially
// written.
func (s *Store) Save(path string) error {
	s.root.UpdatedAt = stamp(s.now())

	data, err := json.MarshalIndent(s.root, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing cache temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing cache file: %w", err)
	}
	return nil
}

// Fragment returns the named fragment for a release, if present.
func (s *Store) Fragment(releaseID int64, field string) (Fragment, bool) {
	entry, ok := s.root.Releases[key(releaseID)]
	if !ok {
		return Fragment{}, false
	}
	frag, ok := entry[field]
	return frag, ok
}

// Put stores data under the named field for a release, stamping it with
// the current time. The data must be JSON-marshalable.
func (s *Store) Put(releaseID int64, field string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding %s fragment: %w", field, err)
	}

	k := key(releaseID)
	entry, ok := s.root.Releases[k]
	if !ok {
		entry = Entry{}
		s.root.Releases[k] = entry
	}
	entry[field] = Fragment{FetchedAt: stamp(s.now()), Data: raw}
	return nil
}

// Fresh reports whether the named fragment exists and is younger than
// ttl. A fragment whose timestamp is missing or unparseable is never
// fresh, forcing a refetch instead of trusting corrupt data. An age
// exactly equal to ttl is stale.
func (s *Store) Fresh(releaseID int64, field string, ttl time.Duration) bool {
	frag, ok := s.Fragment(releaseID, field)
	if !ok {
		return false
	}
	fetched, err := time.Parse(time.RFC3339, frag.FetchedAt)
	if err != nil {
		return false
	}
	age := s.now().Sub(fetched)
	return age >= 0 && age < ttl
}

// Len returns the number of releases with at least one cached fragment.
func (s *Store) Len() int {
	return len(s.root.Releases)
}

// Fragments returns the total fragment count across all releases.
func (s *Store) Fragments() int {
	n := 0
	for _, entry := range s.root.Releases {
		n += len(entry)
	}
	return n
}

// UpdatedAt returns the last persisted timestamp of the document.
func (s *Store) UpdatedAt() string {
	return s.root.UpdatedAt
}

func key(releaseID int64) string {
	return strconv.FormatInt(releaseID, 10)
}
