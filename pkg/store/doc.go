/*
Package store implements the five persisted documents of spec section 4.2:
graph, aspects, slots, plans, and audit. Each document is a single
self-describing YAML payload written atomically (temp file, then rename) so
a crash mid-save never leaves a torn file on disk. A missing document loads
as an empty collection of the right kind, except the aspect document, which
seeds the ten built-in aspects on first load (spec section 9).

# Architecture

	┌──────────────────── DATA DIRECTORY ───────────────────────┐
	│                                                             │
	│  graph.yaml    repos, edges, groups, scenarios, changesets │
	│  aspects.yaml  aspect definitions, annotations             │
	│  slots.yaml    slots, providers, bindings                  │
	│  plans.yaml    plans, diffs                                │
	│  audit.yaml    append-only audit entries                   │
	│                                                             │
	│  .reposystem.lock  advisory lock (pkg/lock), not a document│
	└─────────────────────────────────────────────────────────────┘

Loads never mutate the directory. Saves write to a temp file named
"<name>.yaml.tmp-<random suffix>" and rename it over "<name>.yaml", so a
reader never observes a partial file.
*/
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/hyperpolymath/reposystem/pkg/apperr"
)

// loadDocument reads path into v. A missing file leaves v unchanged (the
// caller is expected to have already zero-valued it). A malformed file
// returns a PersistenceError naming the file and yaml's own parse-position
// message.
func loadDocument(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return apperr.Wrap(apperr.PersistenceError, fmt.Sprintf("read %s", path), err)
	}

	if len(data) == 0 {
		return nil
	}

	if err := yaml.Unmarshal(data, v); err != nil {
		return apperr.Wrap(apperr.PersistenceError, fmt.Sprintf("parse %s", path), err)
	}
	return nil
}

// saveDocument marshals v and writes it to path atomically: a temp file in
// the same directory is written and fsynced, then renamed over path.
func saveDocument(path string, v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return apperr.Wrap(apperr.PersistenceError, fmt.Sprintf("encode %s", path), err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.Wrap(apperr.PersistenceError, fmt.Sprintf("create directory for %s", path), err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return apperr.Wrap(apperr.PersistenceError, fmt.Sprintf("create temp file for %s", path), err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return apperr.Wrap(apperr.PersistenceError, fmt.Sprintf("write temp file for %s", path), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return apperr.Wrap(apperr.PersistenceError, fmt.Sprintf("sync temp file for %s", path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return apperr.Wrap(apperr.PersistenceError, fmt.Sprintf("close temp file for %s", path), err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return apperr.Wrap(apperr.PersistenceError, fmt.Sprintf("rename temp file onto %s", path), err)
	}
	return nil
}
