package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/qubitbot/qubit/internal/errs"
	"github.com/qubitbot/qubit/internal/observability"
)

const (
	offensesFile = "offenses.json"
	userdataFile = "userdata.json"
	prefixesFile = "prefixes.json"
)

// Snapshotter owns the durable ledger files. Every flush rewrites the whole
// file through a temp-file-then-rename so a crash mid-write never leaves a
// torn snapshot behind. All writers funnel through one mutex.
type Snapshotter struct {
	dir    string
	mu     sync.Mutex
	logger *log.Entry
}

func NewSnapshotter(dir string) *Snapshotter {
	return &Snapshotter{
		dir:    dir,
		logger: log.WithField("context", "snapshotter"),
	}
}

// Load reads name into v. A missing file is not an error: ledgers
// materialize lazily, same as users do. A present-but-malformed file is a
// fatal validation error for the caller.
func (s *Snapshotter) Load(name string, v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.WithMessagef(err, "read snapshot %s", name)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.WithMessagef(errs.ErrCorruptSnapshot, "%s: %v", name, err)
	}
	return nil
}

// Save writes v as an indented JSON snapshot, all or nothing.
func (s *Snapshotter) Save(name string, v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		observability.RecordSnapshotFailure()
		return errors.WithMessagef(err, "create temp snapshot for %s", name)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	enc := json.NewEncoder(tmp)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		_ = tmp.Close()
		observability.RecordSnapshotFailure()
		return errors.WithMessagef(err, "encode snapshot %s", name)
	}
	if err := tmp.Close(); err != nil {
		observability.RecordSnapshotFailure()
		return errors.WithMessagef(err, "close temp snapshot for %s", name)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		observability.RecordSnapshotFailure()
		return errors.WithMessagef(err, "rename snapshot %s", name)
	}
	return nil
}
