package ledger

import (
	"encoding/json"
	"os"
	"sort"
)

// document is the on-disk shape: a flat JSON object with one recognized key.
type document struct {
	ProcessedIDs []string `json:"processed_ids"`
}

// Ledger is the durable set of message IDs that have already been fully
// processed (row appended and message marked read). It is the sole
// idempotence mechanism: an ID missing from the ledger will be reprocessed.
type Ledger struct {
	path string
}

// New creates a ledger backed by the JSON document at path.
func New(path string) *Ledger {
	return &Ledger{path: path}
}

// Load reads the persisted ID set. A missing or malformed document yields an
// empty set rather than an error, so corruption never blocks a run; a real
// I/O failure (e.g. permission denied) is returned, because an unreadable
// ledger must not silently cause everything to be reprocessed.
func (l *Ledger) Load() (map[string]struct{}, error) {
	ids := make(map[string]struct{})

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ids, nil
		}
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		// Malformed document: start over with an empty set.
		return ids, nil
	}
	for _, id := range doc.ProcessedIDs {
		ids[id] = struct{}{}
	}
	return ids, nil
}

// Save overwrites the backing document with the given set. IDs are written
// sorted so the document is stable across saves of the same set.
func (l *Ledger) Save(ids map[string]struct{}) error {
	doc := document{ProcessedIDs: make([]string, 0, len(ids))}
	for id := range ids {
		doc.ProcessedIDs = append(doc.ProcessedIDs, id)
	}
	sort.Strings(doc.ProcessedIDs)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(l.path, data, 0644)
}
