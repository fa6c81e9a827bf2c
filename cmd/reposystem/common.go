package main

import (
	"fmt"
	"os"

	"github.com/hyperpolymath/reposystem/pkg/apperr"
	"github.com/hyperpolymath/reposystem/pkg/config"
	"github.com/hyperpolymath/reposystem/pkg/lock"
	"github.com/hyperpolymath/reposystem/pkg/store"
)

// resolveDataDir honors the --data-dir flag over config.DataDir's own
// REPOSYSTEM_DATA_DIR / user-data-dir / cwd precedence.
func resolveDataDir(cmdDataDir string) (string, error) {
	if cmdDataDir != "" {
		return cmdDataDir, nil
	}
	return config.DataDir()
}

// openStore resolves the data directory and opens all five stores.
func openStore(cmdDataDir string) (*store.Store, string, error) {
	dir, err := resolveDataDir(cmdDataDir)
	if err != nil {
		return nil, "", err
	}
	st, err := store.Open(dir)
	if err != nil {
		return nil, "", err
	}
	return st, dir, nil
}

// openStoreLocked is openStore plus the whole-directory advisory lock of
// spec section 5, for CLI commands that mutate a store directly (outside
// executor.Apply/Undo, which take the lock themselves). Callers must defer
// the returned release func.
func openStoreLocked(cmdDataDir string) (st *store.Store, dir string, release func(), err error) {
	st, dir, err = openStore(cmdDataDir)
	if err != nil {
		return nil, "", nil, err
	}
	dl, err := lock.Acquire(dir)
	if err != nil {
		return nil, "", nil, err
	}
	return st, dir, func() { dl.Release() }, nil
}

// exitCodeFor maps an apperr.Kind to a process exit code: 0 is reserved for
// success, so every error path returns non-zero per spec section 6.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	kind, ok := apperr.KindOf(err)
	if !ok {
		return 1
	}
	switch kind {
	case apperr.NotFound:
		return 2
	case apperr.AlreadyExists:
		return 3
	case apperr.InvariantViolation:
		return 4
	case apperr.CompatibilityViolation:
		return 5
	case apperr.OperationFailed:
		return 6
	case apperr.RollbackFailed:
		return 7
	case apperr.PersistenceError:
		return 8
	case apperr.LockContended:
		return 9
	default:
		return 1
	}
}
