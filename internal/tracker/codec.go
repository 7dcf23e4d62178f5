package tracker

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// timeLayout is the canonical timestamp encoding. Parsing accepts any
// RFC 3339 timestamp with or without fractional seconds.
const timeLayout = time.RFC3339Nano

type wireRecord struct {
	Value        json.RawMessage `json:"value"`
	UpdatedAt    *string         `json:"updatedAt"`
	LastChecked  *string         `json:"lastChecked"`
	TimesChecked int             `json:"timesChecked"`
	TimesUpdated int             `json:"timesUpdated"`
}

// Encode serializes s as an indented JSON object with sorted keys.
func Encode(s Store) ([]byte, error) {
	out := make(map[string]wireRecord, len(s))
	for key, rec := range s {
		raw, err := rec.Value.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", key, err)
		}
		out[key] = wireRecord{
			Value:        raw,
			UpdatedAt:    formatTime(rec.UpdatedAt),
			LastChecked:  formatTime(rec.LastChecked),
			TimesChecked: rec.TimesChecked,
			TimesUpdated: rec.TimesUpdated,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Decode parses data produced by Encode. Missing counters read as zero and
// missing or empty timestamps as nil; anything else that does not describe
// a valid Store is an error.
func Decode(data []byte) (Store, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("empty document")
	}

	var in map[string]wireRecord
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}
	if in == nil {
		return nil, errors.New("document is not an object")
	}

	store := make(Store, len(in))
	for key, w := range in {
		rec, err := decodeRecord(key, w)
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", key, err)
		}
		store[key] = rec
	}
	return store, nil
}

func decodeRecord(key string, w wireRecord) (Record, error) {
	if key == "" {
		return Record{}, errors.New("key is empty")
	}
	if len(w.Value) == 0 {
		return Record{}, errors.New("value is missing")
	}

	var rec Record
	if err := rec.Value.UnmarshalJSON(w.Value); err != nil {
		return Record{}, err
	}

	var err error
	if rec.UpdatedAt, err = parseTime(w.UpdatedAt); err != nil {
		return Record{}, fmt.Errorf("updatedAt: %w", err)
	}
	if rec.LastChecked, err = parseTime(w.LastChecked); err != nil {
		return Record{}, fmt.Errorf("lastChecked: %w", err)
	}

	if w.TimesChecked < 0 || w.TimesUpdated < 0 {
		return Record{}, errors.New("counters must not be negative")
	}
	if w.TimesUpdated > w.TimesChecked {
		return Record{}, fmt.Errorf("timesUpdated %d exceeds timesChecked %d", w.TimesUpdated, w.TimesChecked)
	}
	rec.TimesChecked = w.TimesChecked
	rec.TimesUpdated = w.TimesUpdated
	return rec, nil
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(timeLayout)
	return &s
}

func parseTime(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}
