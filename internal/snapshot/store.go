package snapshot

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"invopt-mcp/internal/inventory"

	"github.com/rs/zerolog/log"
)

// FileName is the JSONL file holding one VariantSnapshot per line.
const FileName = "variants.jsonl"

// ErrMissingID is returned when a snapshot carries no variant id.
var ErrMissingID = errors.New("snapshot has no variant id")

// Store provides thread-safe, read-mostly storage for variant snapshots.
type Store struct {
	mu       sync.RWMutex
	variants map[string]inventory.VariantSnapshot // Keyed by variant ID
}

// NewStore creates a new empty Store.
func NewStore() *Store {
	return &Store{
		variants: make(map[string]inventory.VariantSnapshot),
	}
}

// Put inserts or replaces snapshots by variant ID. History and aggregates are
// stored in chronological order.
func (s *Store) Put(snaps ...inventory.VariantSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, snap := range snaps {
		if snap.Variant.ID == "" {
			return ErrMissingID
		}
		s.variants[snap.Variant.ID] = normalize(snap)
	}
	return nil
}

func normalize(snap inventory.VariantSnapshot) inventory.VariantSnapshot {
	history := make([]inventory.Observation, len(snap.History))
	copy(history, snap.History)
	sort.SliceStable(history, func(i, j int) bool { return history[i].Period.Before(history[j].Period) })
	snap.History = history

	aggs := make([]inventory.MonthlyAggregate, len(snap.Aggregates))
	copy(aggs, snap.Aggregates)
	sort.SliceStable(aggs, func(i, j int) bool { return aggs[i].Period.Before(aggs[j].Period) })
	snap.Aggregates = aggs
	return snap
}

// Get returns the snapshot of one variant.
func (s *Store) Get(id string) (inventory.VariantSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.variants[id]
	return snap, ok
}

// Count returns the number of stored variants.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.variants)
}

// Variants returns every stored variant identity, sorted by ID.
func (s *Store) Variants() []inventory.Variant {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]inventory.Variant, 0, len(s.variants))
	for _, snap := range s.variants {
		out = append(out, snap.Variant)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadVariants returns the known snapshots among ids. Unknown ids are omitted.
func (s *Store) LoadVariants(ctx context.Context, ids []string) (map[string]inventory.VariantSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]inventory.VariantSnapshot, len(ids))
	for _, id := range ids {
		if snap, ok := s.variants[id]; ok {
			out[id] = snap
		}
	}
	return out, nil
}

// Load reads snapshots from the JSONL file in dir. A missing file is not an error.
func (s *Store) Load(dir string) error {
	path := filepath.Join(dir, FileName)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No snapshot file yet, not an error
		}
		return fmt.Errorf("failed to open snapshots: %w", err)
	}
	defer file.Close()

	var snaps []inventory.VariantSnapshot
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var snap inventory.VariantSnapshot
		if err := json.Unmarshal(scanner.Bytes(), &snap); err != nil {
			log.Warn().Err(err).Int("line", line).Msg("Skipping invalid JSON line in snapshots")
			continue
		}
		if snap.Variant.ID == "" {
			log.Warn().Int("line", line).Msg("Skipping snapshot without variant id")
			continue
		}
		snaps = append(snaps, snap)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading snapshots: %w", err)
	}

	log.Info().Str("path", path).Int("count", len(snaps)).Msg("Loaded variant snapshots")
	return s.Put(snaps...)
}

// Save persists every snapshot to the JSONL file in dir, sorted by variant ID.
func (s *Store) Save(dir string) error {
	s.mu.RLock()
	snaps := make([]inventory.VariantSnapshot, 0, len(s.variants))
	for _, snap := range s.variants {
		snaps = append(snaps, snap)
	}
	s.mu.RUnlock()

	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Variant.ID < snaps[j].Variant.ID })

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	path := filepath.Join(dir, FileName)
	tmpPath := path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot file: %w", err)
	}

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)

	for _, snap := range snaps {
		if err := encoder.Encode(snap); err != nil {
			file.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("failed to encode snapshot: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush writer: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename snapshot file: %w", err)
	}

	log.Info().Str("path", path).Int("count", len(snaps)).Msg("Variant snapshots saved")
	return nil
}
