package provider

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	querylint "github.com/querylint/querylint"
)

// YAMLGenerator writes snapshots out as YAML so later runs can validate
// against a file:// reference instead of a live database.
type YAMLGenerator struct {
	// PerTable splits the snapshot into one file per table inside a
	// directory named after the snapshot. When false a single file is
	// written at the output path.
	PerTable bool
}

func NewYAMLGenerator(perTable bool) *YAMLGenerator {
	return &YAMLGenerator{PerTable: perTable}
}

// Generate writes snapshot under outputPath and returns the path a
// file:// reference should point at to load it back.
func (g *YAMLGenerator) Generate(snapshot *querylint.Snapshot, outputPath string) (string, error) {
	if g.PerTable {
		return g.generatePerTable(snapshot, outputPath)
	}

	return g.generateSingleFile(snapshot, outputPath)
}

func (g *YAMLGenerator) generateSingleFile(snapshot *querylint.Snapshot, outputPath string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return "", err
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	doc := snapshotDocument{
		Name:     snapshot.Name,
		Database: snapshot.Database,
		Tables:   snapshot.Tables,
	}

	if err := writeYAML(file, doc); err != nil {
		return "", err
	}

	return outputPath, nil
}

func (g *YAMLGenerator) generatePerTable(snapshot *querylint.Snapshot, outputPath string) (string, error) {
	dir := filepath.Join(outputPath, snapshotDirName(snapshot.Name))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	for _, table := range snapshot.Tables {
		var doc tableDocument
		doc.Metadata.Name = snapshot.Name
		doc.Metadata.Database = snapshot.Database
		doc.Table = table

		path := filepath.Join(dir, tableFileName(table.Name))

		file, err := os.Create(path)
		if err != nil {
			return "", err
		}

		if err := writeYAML(file, doc); err != nil {
			file.Close()
			return "", err
		}

		file.Close()
	}

	return dir, nil
}

func writeYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w, yaml.Indent(2))
	defer encoder.Close()

	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("yaml encode failed: %w", err)
	}

	return nil
}

func snapshotDirName(name string) string {
	if name == "" {
		return "schema"
	}

	return strings.ToLower(name)
}

func tableFileName(name string) string {
	return strings.ToLower(name) + ".yaml"
}
