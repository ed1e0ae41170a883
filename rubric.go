package penpal

import (
	"fmt"
	"os"
	"sync"
)

const (
	MinScore     = 1
	MaxScore     = 5
	DefaultTotal = 5
)

// RubricRow is one scored criterion.
type RubricRow struct {
	Criterion string  `json:"criterion" jsonschema:"description=Name of the rubric row"`
	Score     float64 `json:"score" jsonschema:"minimum=1,maximum=5"`
	Total     float64 `json:"total" jsonschema:"description=Always 5"`
	Details   string  `json:"details" jsonschema:"description=Brief explanation of how the score was chosen"`
}

func (r RubricRow) normalize() RubricRow {
	r.Score = min(max(r.Score, MinScore), MaxScore)
	if r.Total == 0 {
		r.Total = DefaultTotal
	}
	return r
}

// ParseRubricRows decodes a scoring answer, fenced or not.
func ParseRubricRows(content string) ([]RubricRow, error) {
	rows, err := parseJSONArray[RubricRow](content)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i] = rows[i].normalize()
	}
	return rows, nil
}

// RubricTable holds the rows of the latest scoring request. It is rebuilt
// wholesale, never merged.
type RubricTable struct {
	mu   sync.RWMutex
	rows []RubricRow
}

func NewRubricTable() *RubricTable {
	return &RubricTable{}
}

func (t *RubricTable) Replace(rows []RubricRow) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append([]RubricRow{}, rows...)
}

func (t *RubricTable) Rows() []RubricRow {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]RubricRow{}, t.rows...)
}

func (t *RubricTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

func (t *RubricTable) Clear() {
	t.Replace(nil)
}

// ReadRubricFile returns the rubric text of a local file, verbatim.
func ReadRubricFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read rubric file: %w", err)
	}
	return string(data), nil
}
