package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/comigor/jargone-go/internal/logger"
)

// Migrate backfills fields introduced after the first release. Items missing
// explanationLevel take it from the legacy department field, else the default
// level; missing userRole and additionalContext become empty strings. The list
// is rewritten only when at least one item changed, so repeated runs are
// no-ops. It reports whether a rewrite happened.
func (s *Store) Migrate(ctx context.Context) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, Key)
	if err != nil {
		return false, fmt.Errorf("read history: %w", err)
	}
	if !ok {
		return false, nil
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		logger.L.Warn("history is not a valid list; skipping migration", "error", err)
		return false, nil
	}

	changed := 0
	for _, item := range items {
		if backfill(item) {
			changed++
		}
	}
	if changed == 0 {
		return false, nil
	}

	out, err := json.Marshal(items)
	if err != nil {
		return false, fmt.Errorf("encode history: %w", err)
	}
	if err := s.kv.Set(ctx, Key, out); err != nil {
		return false, fmt.Errorf("write history: %w", err)
	}
	logger.L.Info("history migrated", "items", len(items), "updated", changed)
	return true, nil
}

func backfill(item map[string]json.RawMessage) bool {
	changed := false
	if missing(item, "explanationLevel") {
		level := json.RawMessage(`"` + string(LevelBasic) + `"`)
		var dept string
		if d, ok := item["department"]; ok && json.Unmarshal(d, &dept) == nil && dept != "" {
			level = d
		}
		item["explanationLevel"] = level
		changed = true
	}
	for _, key := range []string{"userRole", "additionalContext"} {
		if missing(item, key) {
			item[key] = json.RawMessage(`""`)
			changed = true
		}
	}
	return changed
}

func missing(item map[string]json.RawMessage, key string) bool {
	v, ok := item[key]
	return !ok || string(v) == "null"
}
