package rows

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"chat-harvester/internal/domain/entity"
)

var ErrQuestionColumn = errors.New("question column not found")

type Options struct {
	// Delimiter separates delimited-text fields. Zero means ','.
	Delimiter rune
	// QuestionField names the column holding the question. When empty,
	// QuestionIndex is used.
	QuestionField string
	QuestionIndex int
}

func DefaultOptions() Options {
	return Options{Delimiter: ',', QuestionField: "question"}
}

// LoadFile parses a row table, picking the format by extension.
func LoadFile(path string, opts Options) ([]entity.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rows: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return ParseHTMLTable(f)
	case ".tsv":
		opts.Delimiter = '\t'
	}
	return ParseDelimited(f, opts.Delimiter)
}

// Question returns the question cell of row. A named field wins over the
// positional index; a missing column is ErrQuestionColumn.
func Question(row entity.Row, opts Options) (string, error) {
	if opts.QuestionField != "" {
		if v, ok := lookupField(row.Fields, opts.QuestionField); ok {
			return strings.TrimSpace(v), nil
		}
		return "", fmt.Errorf("%w: field %q in row %d", ErrQuestionColumn, opts.QuestionField, row.Index)
	}
	if opts.QuestionIndex < 0 || opts.QuestionIndex >= len(row.Values) {
		return "", fmt.Errorf("%w: index %d in row %d", ErrQuestionColumn, opts.QuestionIndex, row.Index)
	}
	return strings.TrimSpace(row.Values[opts.QuestionIndex]), nil
}

func lookupField(fields map[string]string, name string) (string, bool) {
	if v, ok := fields[name]; ok {
		return v, true
	}
	for k, v := range fields {
		if strings.EqualFold(strings.TrimSpace(k), name) {
			return v, true
		}
	}
	return "", false
}

func newRow(index int, header, values []string) entity.Row {
	fields := make(map[string]string, len(header))
	for i, name := range header {
		if name == "" {
			continue
		}
		if i < len(values) {
			fields[name] = values[i]
		} else {
			fields[name] = ""
		}
	}
	return entity.Row{Index: index, Fields: fields, Values: values}
}
