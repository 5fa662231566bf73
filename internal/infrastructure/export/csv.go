package export

import (
	"io"
	"strings"
	"time"

	"chat-harvester/internal/domain/entity"
)

var csvHeader = []string{"question", "answer", "timestamp"}

// WriteCSV writes records with a question,answer,timestamp header. A field is
// quoted only when it holds a comma, a quote, CR or LF; quotes are doubled.
func WriteCSV(w io.Writer, records []entity.ResultRecord) error {
	var b strings.Builder
	writeCSVLine(&b, csvHeader)
	for _, rec := range records {
		writeCSVLine(&b, []string{
			rec.Question,
			rec.Answer,
			rec.Timestamp.UTC().Format(time.RFC3339Nano),
		})
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeCSVLine(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeCSV(f))
	}
	b.WriteByte('\n')
}

func escapeCSV(s string) string {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
