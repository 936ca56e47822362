package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ciricc/sweepbench/pkg/benchreport"
	"github.com/samber/lo"
)

// Loader reads a persisted dataset.
type Loader interface {
	Load() ([]benchreport.Record, error)
}

// Dataset is the ordered, in-memory record sequence of one sweep.
// It is owned by a single goroutine and is not safe for concurrent use.
type Dataset struct {
	records []benchreport.Record
}

func NewDataset() *Dataset {
	return &Dataset{}
}

// Append assigns the next dense run id to rec and stores a private copy.
// Records are immutable once appended.
func (d *Dataset) Append(rec benchreport.Record) benchreport.Record {
	rec = rec.Clone()
	rec.RunID = len(d.records) + 1
	d.records = append(d.records, rec)
	return rec.Clone()
}

func (d *Dataset) Len() int { return len(d.records) }

// Records returns a deep copy of the stored sequence.
func (d *Dataset) Records() []benchreport.Record {
	return lo.Map(d.records, func(r benchreport.Record, _ int) benchreport.Record { return r.Clone() })
}

// FileStore persists a dataset as one indented JSON array.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

// Save overwrites the artifact with records. The file is written to a
// temporary sibling and renamed into place.
func (s *FileStore) Save(records []benchreport.Record) error {
	if records == nil {
		records = []benchreport.Record{}
	}

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}

	return WriteFileAtomic(s.path, append(data, '\n'))
}

// Load reads the artifact back in persisted order.
func (s *FileStore) Load() ([]benchreport.Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", benchreport.ErrMissingInput, s.path)
		}
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	var records []benchreport.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshal dataset %s: %w", s.path, err)
	}

	return records, nil
}

// WriteFileAtomic creates missing parent directories, writes data to a
// temporary file next to path and renames it over path.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmpName, err)
	}

	return nil
}
