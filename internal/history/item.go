package history

import (
	"encoding/json"
	"time"
)

// Item is one query/response pair. Explanation holds the rendered HTML that
// was shown for the query, including failure text.
type Item struct {
	ID                int64     `json:"id"`
	Query             string    `json:"query"`
	Explanation       string    `json:"explanation"`
	ExplanationLevel  string    `json:"explanationLevel"`
	Department        string    `json:"department,omitempty"`
	UserRole          string    `json:"userRole"`
	AdditionalContext string    `json:"additionalContext"`
	Timestamp         time.Time `json:"timestamp"`
}

// UnmarshalJSON accepts the timestamp as an RFC 3339 string or as unix
// milliseconds. An empty or unparseable timestamp decodes as the zero time.
func (it *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	var aux struct {
		plain
		Timestamp json.RawMessage `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*it = Item(aux.plain)
	it.Timestamp = parseTimestamp(aux.Timestamp)
	return nil
}

func parseTimestamp(raw json.RawMessage) time.Time {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}
	}
	var millis int64
	if err := json.Unmarshal(raw, &millis); err == nil {
		return time.UnixMilli(millis).UTC()
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil || text == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, text)
	if err != nil {
		return time.Time{}
	}
	return t
}
