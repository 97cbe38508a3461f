package show

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// File names within a show folder. The interchange format is fixed: three
// CSV files, first row column titles.
const (
	attributesFile = "attributes.csv"
	statesFile     = "states.csv"
	cuesFile       = "all_cues.csv"
)

// dirPermissions is the permission mode for created show folders.
const dirPermissions = 0750

// Bundle is one complete show: the three raw tables as read from disk or
// about to be written to it.
type Bundle struct {
	Attributes *Table
	States     *Table
	Cues       *Table
}

// Load reads a show from a folder.
//
// Returns ErrShowNotFound when the folder or any of the three CSV files is
// missing; other read or parse failures are returned as-is.
func Load(dir string) (*Bundle, error) {
	attrs, err := readCSV(filepath.Join(dir, attributesFile))
	if err != nil {
		return nil, err
	}
	states, err := readCSV(filepath.Join(dir, statesFile))
	if err != nil {
		return nil, err
	}
	cues, err := readCSV(filepath.Join(dir, cuesFile))
	if err != nil {
		return nil, err
	}
	return &Bundle{Attributes: attrs, States: states, Cues: cues}, nil
}

// Save writes a show to a folder, creating the folder if needed.
// Existing files are overwritten.
func Save(dir string, bundle *Bundle) error {
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("creating show folder: %w", err)
	}
	files := map[string]*Table{
		attributesFile: bundle.Attributes,
		statesFile:     bundle.States,
		cuesFile:       bundle.Cues,
	}
	for name, table := range files {
		if err := writeCSV(filepath.Join(dir, name), table); err != nil {
			return err
		}
	}
	return nil
}

// FolderPath joins a base directory with an operator-supplied show name.
// Names containing path separators or parent references are rejected so a
// command like "/open saved ../../etc" cannot escape the shows directory.
func FolderPath(base, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(base, name), nil
}

// readCSV parses one CSV file into a Table. The first record is the header.
func readCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrShowNotFound, path)
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	// The script format tolerates ragged rows; pad them later.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Table{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	table := NewTable(header...)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		table.AppendRow(record...)
	}
	return table, nil
}

// writeCSV writes a Table as one CSV file, header first.
func writeCSV(path string, table *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	writer := csv.NewWriter(f)
	records := append([][]string{table.Columns}, table.Rows...)
	if err := writer.WriteAll(records); err != nil {
		f.Close() //nolint:errcheck // best effort cleanup on error path
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
