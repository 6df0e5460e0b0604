package services

import (
	"io"
	"strings"
	"time"

	"github.com/dagapurva3/senior-care-incidents/internal/models"
)

// CSVHeader is the first line of every export.
const CSVHeader = "ID,Type,Description,Status,Summary,Created At,Updated At"

// WriteIncidentsCSV writes the header, a newline and one fully quoted row per
// incident, rows separated by newlines with no trailing newline.
func WriteIncidentsCSV(w io.Writer, incidents []models.Incident) error {
	if _, err := io.WriteString(w, CSVHeader+"\n"); err != nil {
		return err
	}
	for i, inc := range incidents {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, csvRow(inc)); err != nil {
			return err
		}
	}
	return nil
}

// IncidentsCSV returns the export as a string.
func IncidentsCSV(incidents []models.Incident) string {
	var b strings.Builder
	_ = WriteIncidentsCSV(&b, incidents)
	return b.String()
}

func csvRow(inc models.Incident) string {
	summary := ""
	if inc.Summary != nil {
		summary = *inc.Summary
	}
	fields := []string{
		inc.ID,
		string(inc.Type),
		inc.Description,
		string(inc.Status),
		summary,
		formatTimestamp(inc.CreatedAt),
		formatTimestamp(inc.UpdatedAt),
	}
	for i, f := range fields {
		fields[i] = quoteCSV(f)
	}
	return strings.Join(fields, ",")
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
