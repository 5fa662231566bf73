package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"chat-harvester/internal/domain/entity"
)

var ErrUnknownFormat = errors.New("unknown export format")

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

func Write(w io.Writer, format string, records []entity.ResultRecord) error {
	switch strings.ToLower(format) {
	case FormatCSV:
		return WriteCSV(w, records)
	case FormatJSON:
		return WriteJSON(w, records)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ContentType is the HTTP media type for format.
func ContentType(format string) string {
	if strings.ToLower(format) == FormatJSON {
		return "application/json"
	}
	return "text/csv; charset=utf-8"
}
