package services

import (
	"slices"
	"sync"
	"time"

	"finboard/internal/models"
)

// FilterEngine tracks the current filter selection over a canonical record
// sequence. The sequence itself is never mutated; filtering only selects an
// order-preserving subsequence. The selection is plain in-process state so a
// session keeps its last selection between requests.
type FilterEngine struct {
	mu        sync.RWMutex
	records   []models.Record
	selection models.Selection
}

// NewFilterEngine builds an engine over the full dataset. The initial
// selection covers every value present in the data.
func NewFilterEngine(records []models.Record) *FilterEngine {
	return &FilterEngine{
		records:   records,
		selection: DefaultSelection(records),
	}
}

// DefaultSelection returns the selection matching the entire dataset: the
// distinct countries, segments, years and quarters observed, and the full
// min-max date span.
func DefaultSelection(records []models.Record) models.Selection {
	sel := models.Selection{
		Countries: []string{},
		Segments:  []string{},
		Years:     []int{},
		Quarters:  []models.Quarter{},
	}
	if len(records) == 0 {
		return sel
	}

	countries := make(map[string]bool)
	segments := make(map[string]bool)
	years := make(map[int]bool)
	quarters := make(map[models.Quarter]bool)
	minDate, maxDate := records[0].Date, records[0].Date

	for _, r := range records {
		countries[r.Country] = true
		segments[r.Segment] = true
		years[r.Year] = true
		quarters[r.Quarter] = true
		if r.Date.Before(minDate) {
			minDate = r.Date
		}
		if r.Date.After(maxDate) {
			maxDate = r.Date
		}
	}

	sel.Countries = sortedKeys(countries)
	sel.Segments = sortedKeys(segments)
	sel.Years = sortedKeys(years)
	sel.Quarters = sortedKeys(quarters)
	sel.StartDate = minDate
	sel.EndDate = maxDate
	return sel
}

func sortedKeys[K interface {
	~string | ~int
}](set map[K]bool) []K {
	keys := make([]K, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Apply returns the subsequence of records matching sel, preserving input
// order. It is a pure function of its arguments; the engine's own state is
// not consulted.
func Apply(records []models.Record, sel models.Selection) []models.Record {
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if sel.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// Current returns the engine's current selection.
func (e *FilterEngine) Current() models.Selection {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return cloneSelection(e.selection)
}

// Update applies a partial selection change and returns the new selection.
// Nil patch fields leave the corresponding dimension unchanged.
func (e *FilterEngine) Update(patch models.SelectionPatch) models.Selection {
	e.mu.Lock()
	defer e.mu.Unlock()

	if patch.Countries != nil {
		e.selection.Countries = slices.Clone(*patch.Countries)
	}
	if patch.Segments != nil {
		e.selection.Segments = slices.Clone(*patch.Segments)
	}
	if patch.Years != nil {
		e.selection.Years = slices.Clone(*patch.Years)
	}
	if patch.Quarters != nil {
		e.selection.Quarters = slices.Clone(*patch.Quarters)
	}
	if patch.StartDate != nil {
		e.selection.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		e.selection.EndDate = *patch.EndDate
	}
	return cloneSelection(e.selection)
}

// Reset restores the selection covering the full, unfiltered dataset. It is
// idempotent and independent of whatever the selection was before.
func (e *FilterEngine) Reset() models.Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selection = DefaultSelection(e.records)
	return cloneSelection(e.selection)
}

// Filtered applies the current selection to the full dataset.
func (e *FilterEngine) Filtered() []models.Record {
	e.mu.RLock()
	sel := e.selection
	e.mu.RUnlock()
	return Apply(e.records, sel)
}

// Records returns the canonical unfiltered sequence.
func (e *FilterEngine) Records() []models.Record {
	return e.records
}

// DateSpan returns the full min-max span of the dataset, for clamping
// user-supplied ranges at the presentation boundary.
func (e *FilterEngine) DateSpan() (time.Time, time.Time) {
	def := DefaultSelection(e.records)
	return def.StartDate, def.EndDate
}

func cloneSelection(s models.Selection) models.Selection {
	s.Countries = slices.Clone(s.Countries)
	s.Segments = slices.Clone(s.Segments)
	s.Years = slices.Clone(s.Years)
	s.Quarters = slices.Clone(s.Quarters)
	return s
}
