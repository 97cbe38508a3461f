package show

import (
	"bytes"
	"embed"
	"encoding/csv"
	"fmt"
)

// Built-in template tables, compiled into the binary. They seed the data
// store on first run and back the /reset command.
//
//go:embed templates/*.csv
var templatesFS embed.FS

// Templates returns the built-in template show.
// The embedded files are part of the build; a parse failure here is a
// programming error, so it is returned rather than swallowed.
func Templates() (*Bundle, error) {
	attrs, err := readTemplate("templates/attributes.csv")
	if err != nil {
		return nil, err
	}
	states, err := readTemplate("templates/states.csv")
	if err != nil {
		return nil, err
	}
	cues, err := readTemplate("templates/all_cues.csv")
	if err != nil {
		return nil, err
	}
	return &Bundle{Attributes: attrs, States: states, Cues: cues}, nil
}

func readTemplate(name string) (*Table, error) {
	data, err := templatesFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", name, err)
	}
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}
	table := NewTable(records[0]...)
	for _, record := range records[1:] {
		table.AppendRow(record...)
	}
	return table, nil
}
