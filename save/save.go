// Package save writes and restores snapshots of the clauses an engine
// created through add_fact and consult_string.
package save

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nathoo/prologot/term"
	"github.com/nathoo/prologot/types"
)

// FormatVersion is written into every snapshot.
const FormatVersion = "2"

// SaveData is the JSON snapshot format. Predicates lists every predicate
// the snapshot owns, including ones that had no clauses when saved.
type SaveData struct {
	Version    string            `json:"version"`
	Argv       []string          `json:"argv,omitempty"`
	Predicates []types.Indicator `json:"predicates"`
	Clauses    []string          `json:"clauses"`
}

// Source is what Save reads from.
type Source interface {
	Clauses() ([]string, error)
	CreatedPredicates() []types.Indicator
	Argv() []string
}

// Target is what Apply writes to.
type Target interface {
	RetractAll(pattern string) bool
	AddFact(text string) bool
	LastError() string
}

// Save serializes the clauses of src to JSON bytes.
func Save(src Source) ([]byte, error) {
	clauses, err := src.Clauses()
	if err != nil {
		return nil, fmt.Errorf("collecting clauses: %w", err)
	}
	if clauses == nil {
		clauses = []string{}
	}
	preds := src.CreatedPredicates()
	if preds == nil {
		preds = []types.Indicator{}
	}
	return json.MarshalIndent(SaveData{
		Version:    FormatVersion,
		Argv:       src.Argv(),
		Predicates: preds,
		Clauses:    clauses,
	}, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	if sd.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported snapshot version %q", sd.Version)
	}
	for _, pi := range sd.Predicates {
		if pi.Name == "" || pi.Arity < 0 {
			return nil, fmt.Errorf("invalid predicate indicator %q/%d", pi.Name, pi.Arity)
		}
	}
	if sd.Predicates == nil {
		sd.Predicates = []types.Indicator{}
	}
	if sd.Clauses == nil {
		sd.Clauses = []string{}
	}
	return &sd, nil
}

// Apply replaces every predicate named in the snapshot with the snapshot's
// clauses, in order. Predicates not in the snapshot are left alone.
func Apply(dst Target, sd *SaveData) error {
	for _, pi := range sd.Predicates {
		if !dst.RetractAll(pattern(pi)) {
			return fmt.Errorf("clearing %s/%d: %s", pi.Name, pi.Arity, dst.LastError())
		}
	}
	for _, c := range sd.Clauses {
		if !dst.AddFact(c) {
			return fmt.Errorf("restoring %q: %s", c, dst.LastError())
		}
	}
	return nil
}

// pattern renders name(_, ..., _) for retractall.
func pattern(pi types.Indicator) string {
	if pi.Arity == 0 {
		return term.Canonical(term.Atom(pi.Name))
	}
	return term.Canonical(term.Atom(pi.Name)) + "(" + strings.TrimSuffix(strings.Repeat("_,", pi.Arity), ",") + ")"
}
