package rows

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"chat-harvester/internal/domain/entity"
)

// ParseDelimited reads delimited text whose first record is the header.
func ParseDelimited(r io.Reader, delimiter rune) ([]entity.Row, error) {
	if delimiter == 0 {
		delimiter = ','
	}
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var out []entity.Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(out)+1, err)
		}
		out = append(out, newRow(len(out), header, rec))
	}
}
