package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hassan-odimi/David.Lynch-Dashboard/internal/models"
	"github.com/hassan-odimi/David.Lynch-Dashboard/internal/processing"
)

// LoadError reports a document-level failure: the source could not be
// read, or it is not a JSON array at the top level. A malformed
// individual record never produces one.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("load dataset: %v", e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Parse decodes a JSON array of raw lots and normalizes every entry.
// Each raw record yields exactly one lot; unparseable fields degrade
// to nil instead of dropping the record.
func Parse(data []byte) ([]models.Lot, error) {
	lots, err := parse(data)
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	return lots, nil
}

func parse(data []byte) ([]models.Lot, error) {
	var raw []models.RawLot
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	lots := make([]models.Lot, 0, len(raw))
	for _, r := range raw {
		lots = append(lots, normalize(r))
	}
	return lots, nil
}

func normalize(r models.RawLot) models.Lot {
	lot := models.Lot{
		Title:    strings.TrimSpace(r.Title),
		URL:      strings.TrimSpace(r.ItemURL),
		ImageURL: strings.TrimSpace(r.ItemImage),
	}

	lot.SoldPrice = processing.ParseCurrency(r.SoldPrice)
	lot.EstimateLow, lot.EstimateHigh = processing.ParseEstimate(r.EstimatedPrice)
	lot.Category = processing.DetectCategory(lot.Title)

	lot.ID = processing.BuildLotID(lot.Title, lot.URL)
	if lot.ID == "" {
		lot.ID = uuid.NewString()
	}
	return lot
}

// Store owns the cached normalized collection for one source file.
// The cached slice is never mutated after construction, so it is safe
// to hand out to concurrent readers. Callers must treat results as
// values; identity across calls is not guaranteed.
type Store struct {
	path string

	mu      sync.Mutex
	lots    []models.Lot
	modTime time.Time
	loaded  bool
}

// NewStore creates a store reading from the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the normalized collection, re-reading and re-parsing
// the source file only when its modification time has changed since
// the previous read.
func (s *Store) Load() ([]models.Lot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	if err != nil {
		return nil, &LoadError{Source: s.path, Err: err}
	}
	if s.loaded && info.ModTime().Equal(s.modTime) {
		return s.lots, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &LoadError{Source: s.path, Err: err}
	}
	lots, err := parse(data)
	if err != nil {
		return nil, &LoadError{Source: s.path, Err: err}
	}

	s.lots = lots
	s.modTime = info.ModTime()
	s.loaded = true
	return lots, nil
}

// Invalidate drops the cached collection; the next Load re-reads the
// source file unconditionally.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loaded = false
	s.lots = nil
	s.modTime = time.Time{}
}
