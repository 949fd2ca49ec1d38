package provider

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-yaml"

	querylint "github.com/querylint/querylint"
)

// snapshotDocument is the on-disk form of a single-file snapshot.
type snapshotDocument struct {
	Name     string                 `yaml:"name"`
	Database querylint.DatabaseInfo `yaml:"database"`
	Tables   []*querylint.Table     `yaml:"tables"`
}

// tableDocument is the on-disk form of a per-table snapshot file. The
// metadata block is repeated in every file so each one is self-describing.
type tableDocument struct {
	Metadata struct {
		Name     string                 `yaml:"name"`
		Database querylint.DatabaseInfo `yaml:"database"`
	} `yaml:"metadata"`
	Table *querylint.Table `yaml:"table"`
}

// LoadSnapshot reads a snapshot back from path, which may be either a
// single YAML file or a directory of per-table YAML files produced by
// WriteSnapshot.
func LoadSnapshot(path string) (*querylint.Snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSchemaFileNotFound, path)
		}

		return nil, err
	}

	if info.IsDir() {
		return loadSnapshotDir(path)
	}

	return loadSnapshotFile(path)
}

func loadSnapshotFile(path string) (*querylint.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc snapshotDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrInvalidSchemaFile, path, err)
	}

	if len(doc.Tables) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoTablesFound, path)
	}

	snapshot, err := querylint.NewSnapshot(doc.Name, doc.Database, doc.Tables)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrInvalidSchemaFile, path, err)
	}

	return snapshot, nil
}

func loadSnapshotDir(dir string) (*querylint.Snapshot, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var (
		name     string
		database querylint.DatabaseInfo
		tables   []*querylint.Table
	)

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		var doc tableDocument
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %s: %s", ErrInvalidSchemaFile, path, err)
		}

		if doc.Table == nil {
			return nil, fmt.Errorf("%w: %s: missing table block", ErrInvalidSchemaFile, path)
		}

		name = doc.Metadata.Name
		database = doc.Metadata.Database
		tables = append(tables, doc.Table)
	}

	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoTablesFound, dir)
	}

	sort.Slice(tables, func(i, j int) bool {
		return tables[i].Name < tables[j].Name
	})

	snapshot, err := querylint.NewSnapshot(name, database, tables)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrInvalidSchemaFile, dir, err)
	}

	return snapshot, nil
}
