package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/axiomhq/hyperloglog"
	"github.com/dgraph-io/badger/v4"
)

const (
	typeKeyPrefix = "stats::type::"
	edgeKeyPrefix = "stats::edge::"
)

// typeRecord is the persisted form of one type's statistics.
type typeRecord struct {
	Name     string   `json:"name"`
	Kind     TypeKind `json:"kind"`
	Abstract bool     `json:"abstract"`
	Count    uint64   `json:"count"`
}

// edgeRecord is the persisted form of one edge label's statistics. The
// sketch tracks distinct source instances so that the expansion
// estimate Count/distinct survives duplicate ingestion.
type edgeRecord struct {
	Label  string `json:"label"`
	Count  uint64 `json:"count"`
	Sketch []byte `json:"sketch"`
}

// Stats is a BadgerDB-backed statistics store implementing Graph. All
// records are loaded into memory at open; mutations write through to
// Badger and bump the epoch. Reads are cheap map lookups.
type Stats struct {
	db *badger.DB

	mu    sync.RWMutex
	types map[string]*memType
	edges map[string]*edgeStats
	epoch uint64
}

type edgeStats struct {
	count  uint64
	sketch *hyperloglog.Sketch
}

// OpenStats opens (or creates) a statistics store at path.
func OpenStats(path string) (*Stats, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Badger's own logging is noise for a stats store

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open stats store: %w", err)
	}

	s := &Stats{
		db:    db,
		types: make(map[string]*memType),
		edges: make(map[string]*edgeStats),
	}
	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database.
func (s *Stats) Close() error {
	return s.db.Close()
}

// load scans both key ranges into memory. Badger iterates keys in
// order, so each prefix is one contiguous scan.
func (s *Stats) load() error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(typeKeyPrefix)); it.ValidForPrefix([]byte(typeKeyPrefix)); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var rec typeRecord
				if err := json.Unmarshal(val, &rec); err != nil {
					return fmt.Errorf("corrupt type record %q: %w", it.Item().Key(), err)
				}
				s.types[rec.Name] = &memType{
					name:     rec.Name,
					kind:     rec.Kind,
					abstract: rec.Abstract,
					count:    rec.Count,
				}
				return nil
			})
			if err != nil {
				return err
			}
		}

		for it.Seek([]byte(edgeKeyPrefix)); it.ValidForPrefix([]byte(edgeKeyPrefix)); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var rec edgeRecord
				if err := json.Unmarshal(val, &rec); err != nil {
					return fmt.Errorf("corrupt edge record %q: %w", it.Item().Key(), err)
				}
				sketch := hyperloglog.New14()
				if len(rec.Sketch) > 0 {
					if err := sketch.UnmarshalBinary(rec.Sketch); err != nil {
						return fmt.Errorf("corrupt edge sketch %q: %w", rec.Label, err)
					}
				}
				s.edges[rec.Label] = &edgeStats{count: rec.Count, sketch: sketch}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// DefineType registers a type, keeping any existing instance count.
func (s *Stats) DefineType(name string, kind TypeKind, abstract bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.types[name]
	if !ok {
		t = &memType{name: name}
		s.types[name] = t
	}
	t.kind = kind
	t.abstract = abstract
	s.epoch++
	return s.putType(t)
}

// RecordInstances adds n stored instances to a type's counter, defining
// the type as an entity type if absent.
func (s *Stats) RecordInstances(name string, n uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.types[name]
	if !ok {
		t = &memType{name: name, kind: KindEntity}
		s.types[name] = t
	}
	t.count += n
	s.epoch++
	return s.putType(t)
}

// RecordEdge records one traversed edge with the given label leaving
// the given source instance. The per-label sketch deduplicates sources
// so EdgeEstimate converges on the true average out-degree.
func (s *Stats) RecordEdge(label string, sourceIID []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.edges[label]
	if !ok {
		e = &edgeStats{sketch: hyperloglog.New14()}
		s.edges[label] = e
	}
	e.count++
	e.sketch.Insert(sourceIID)
	s.epoch++

	sketchBytes, err := e.sketch.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to marshal edge sketch %q: %w", label, err)
	}
	return s.put(edgeKeyPrefix+label, edgeRecord{Label: label, Count: e.count, Sketch: sketchBytes})
}

func (s *Stats) putType(t *memType) error {
	return s.put(typeKeyPrefix+t.name, typeRecord{
		Name:     t.name,
		Kind:     t.kind,
		Abstract: t.abstract,
		Count:    t.count,
	})
}

func (s *Stats) put(key string, rec interface{}) error {
	val, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal stats record %q: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), val)
	})
}

// GetType resolves a type by label.
func (s *Stats) GetType(name string) (TypeHandle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.types[name]
	return t, ok
}

// TypeCount returns the total number of defined types.
func (s *Stats) TypeCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.types))
}

// AttributeTypeCount returns the number of defined attribute types.
func (s *Stats) AttributeTypeCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n uint64
	for _, t := range s.types {
		if t.kind == KindAttribute {
			n++
		}
	}
	return n
}

// EdgeEstimate returns count/distinct-sources for the label, minimum 1.
func (s *Stats) EdgeEstimate(label string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.edges[label]
	if !ok || e.count == 0 {
		return 1
	}
	distinct := e.sketch.Estimate()
	if distinct == 0 {
		distinct = 1
	}
	est := e.count / distinct
	if est == 0 {
		est = 1
	}
	return est
}

// Epoch returns the current statistics epoch.
func (s *Stats) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// TypeNames returns the defined type labels in sorted order. Used by
// diagnostic tooling.
func (s *Stats) TypeNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.types))
	for name := range s.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
