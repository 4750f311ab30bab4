package audit

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"
	"time"
)

var csvHeader = []string{"id", "at", "actor_id", "actor", "action", "entity", "entity_id", "meta"}

// WriteCSV renders rows as RFC 4180 CSV with a header line.
func WriteCSV(rows []TimelineRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, row := range rows {
		actorID := ""
		if row.ActorID != nil {
			actorID = strconv.FormatInt(*row.ActorID, 10)
		}
		meta := ""
		if len(row.Meta) > 0 {
			b, err := json.Marshal(row.Meta)
			if err != nil {
				return nil, err
			}
			meta = string(b)
		}
		record := []string{
			strconv.FormatInt(row.ID, 10),
			row.At.UTC().Format(time.RFC3339),
			actorID,
			row.Actor,
			row.Action,
			row.Entity,
			row.EntityID,
			meta,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
