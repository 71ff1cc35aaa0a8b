package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/okian/lumo/internal/domain/model"
)

// researchFields is the column order of the CSV export; it doubles as the
// header row.
var researchFields = []string{
	"event_id",
	"event_type",
	"user_id",
	"session_id",
	"timestamp",
	"session_duration_ms",
	"page_views",
	"total_events",
	"payload",
}

// ExportJSON renders a report as pretty-printed JSON.
func ExportJSON(r Report) ([]byte, error) {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return b, nil
}

// ExportResearchJSON renders the raw research event set as pretty-printed
// JSON records with the same field keys as the CSV export.
func ExportResearchJSON(research []model.ResearchEvent) ([]byte, error) {
	records := make([]map[string]any, len(research))
	for i, e := range research {
		records[i] = map[string]any{
			"event_id":            e.EventID,
			"event_type":          string(e.Type),
			"user_id":             e.UserID,
			"session_id":          e.SessionID,
			"timestamp":           e.Timestamp,
			"session_duration_ms": e.SessionDuration.Milliseconds(),
			"page_views":          e.PageViews,
			"total_events":        e.TotalEvents,
			"payload":             json.RawMessage(model.PayloadJSON(e.Payload)),
		}
	}
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal research events: %w", err)
	}
	return b, nil
}

// ExportResearchCSV renders the raw research event set as flat CSV: a header
// row of field keys, then one row per record with JSON-stringified values.
func ExportResearchCSV(research []model.ResearchEvent) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(researchFields); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, e := range research {
		row := []string{
			jsonString(e.EventID),
			jsonString(string(e.Type)),
			jsonString(e.UserID),
			jsonString(e.SessionID),
			jsonString(e.Timestamp),
			strconv.FormatInt(e.SessionDuration.Milliseconds(), 10),
			strconv.Itoa(e.PageViews),
			strconv.Itoa(e.TotalEvents),
			model.PayloadJSON(e.Payload),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// jsonString JSON-stringifies a single field value.
func jsonString(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return `""`
	}
	return string(b)
}
