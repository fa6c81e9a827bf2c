package store

import (
	"path/filepath"

	"github.com/hyperpolymath/reposystem/pkg/apperr"
	"github.com/hyperpolymath/reposystem/pkg/model"
)

// AuditDocument is the contents of audit.yaml. Entries are append-only (P9):
// this package exposes no method that mutates or removes an existing entry.
type AuditDocument struct {
	Entries []model.AuditEntry `yaml:"entries,omitempty"`
}

// AuditStore owns audit.yaml.
type AuditStore struct {
	path string
	doc  AuditDocument
}

// OpenAuditStore loads audit.yaml from dataDir (empty if absent).
func OpenAuditStore(dataDir string) (*AuditStore, error) {
	s := &AuditStore{path: filepath.Join(dataDir, "audit.yaml")}
	if err := loadDocument(s.path, &s.doc); err != nil {
		return nil, err
	}
	return s, nil
}

// Save persists the current document atomically.
func (s *AuditStore) Save() error {
	return saveDocument(s.path, &s.doc)
}

// Document returns a copy of the underlying document.
func (s *AuditStore) Document() AuditDocument {
	return s.doc
}

// Append adds entry, failing with InvariantViolation if an entry with the
// same id already exists (append-only: never overwrite).
func (s *AuditStore) Append(entry model.AuditEntry) error {
	for _, e := range s.doc.Entries {
		if e.ID == entry.ID {
			return apperr.New(apperr.InvariantViolation, "audit entry already exists: "+entry.ID)
		}
	}
	s.doc.Entries = append(s.doc.Entries, entry)
	return nil
}

// ListEntries returns all audit entries.
func (s *AuditStore) ListEntries() []model.AuditEntry {
	return append([]model.AuditEntry(nil), s.doc.Entries...)
}

// EntriesForPlan returns all audit entries for planID, in append order.
func (s *AuditStore) EntriesForPlan(planID string) []model.AuditEntry {
	var out []model.AuditEntry
	for _, e := range s.doc.Entries {
		if e.PlanID == planID {
			out = append(out, e)
		}
	}
	return out
}
