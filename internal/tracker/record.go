package tracker

import (
	"sort"
	"time"

	"git.home.luguber.info/inful/checkem/internal/foundation"
)

// Record is the tracked state of one key.
type Record struct {
	Value Value
	// UpdatedAt is nil only for records loaded without it.
	UpdatedAt    *time.Time
	LastChecked  *time.Time
	TimesChecked int
	TimesUpdated int
}

// LastUpdate returns UpdatedAt as an Option.
func (r Record) LastUpdate() foundation.Option[time.Time] {
	return foundation.FromPointer(r.UpdatedAt)
}

func (r Record) clone() Record {
	out := r
	out.UpdatedAt = copyTime(r.UpdatedAt)
	out.LastChecked = copyTime(r.LastChecked)
	return out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Store maps keys to their records.
type Store map[string]Record

// Clone returns a deep copy of s.
func (s Store) Clone() Store {
	out := make(Store, len(s))
	for k, r := range s {
		out[k] = r.clone()
	}
	return out
}

// Keys returns the keys of s in ascending order.
func (s Store) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
