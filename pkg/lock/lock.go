// Package lock implements the whole-directory advisory lock of spec
// section 5: a lightweight lock file created at apply start and released by
// the holder's deferred Release on return (success or error), so two
// concurrent applies against the same data directory fail fast instead of
// racing each other's writes. No signal handler is installed: a process
// killed by a signal leaves the lock file behind.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/hyperpolymath/reposystem/pkg/apperr"
)

const fileName = ".reposystem.lock"

// DirLock is a held advisory lock on a data directory.
type DirLock struct {
	path   string
	token  string
	closed bool
}

// Acquire creates the lock file in dataDir, failing with
// apperr.LockContended if it already exists. The lock file's content is
// "<token>\n<pid>\n", where token is a fresh UUID used only to identify this
// holder for diagnostics; it plays no role in ownership (ownership is file
// existence).
func Acquire(dataDir string) (*DirLock, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, apperr.Wrap(apperr.PersistenceError, "create data directory", err)
	}

	path := filepath.Join(dataDir, fileName)
	token := uuid.New().String()
	contents := fmt.Sprintf("%s\n%d\n", token, os.Getpid())

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			holder := readHolder(path)
			return nil, apperr.New(apperr.LockContended,
				fmt.Sprintf("data directory %s is locked by another apply (%s)", dataDir, holder))
		}
		return nil, apperr.Wrap(apperr.PersistenceError, "create lock file", err)
	}
	defer f.Close()

	if _, err := f.WriteString(contents); err != nil {
		_ = os.Remove(path)
		return nil, apperr.Wrap(apperr.PersistenceError, "write lock file", err)
	}

	return &DirLock{path: path, token: token}, nil
}

// Release removes the lock file. Safe to call more than once.
func (l *DirLock) Release() error {
	if l == nil || l.closed {
		return nil
	}
	l.closed = true
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return apperr.Wrap(apperr.PersistenceError, "release lock file", err)
	}
	return nil
}

// Token returns this lock's holder token, mainly for diagnostics/tests.
func (l *DirLock) Token() string {
	return l.token
}

func readHolder(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "unknown holder"
	}
	lines := strings.SplitN(strings.TrimSpace(string(data)), "\n", 2)
	if len(lines) == 2 {
		if pid, err := strconv.Atoi(lines[1]); err == nil {
			return fmt.Sprintf("pid %d, token %s", pid, lines[0])
		}
	}
	return strings.TrimSpace(string(data))
}
