package penpal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRubricRowsFenced(t *testing.T) {
	content := "```json\n[{\"criterion\":\"Thesis\",\"score\":4,\"total\":5,\"details\":\"Clear\"}]\n```"

	rows, err := ParseRubricRows(content)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, RubricRow{Criterion: "Thesis", Score: 4, Total: 5, Details: "Clear"}, rows[0])
}

func TestParseRubricRowsNormalizes(t *testing.T) {
	content := `[{"criterion":"Grammar","score":7},{"criterion":"Evidence","score":0,"total":5}]`

	rows, err := ParseRubricRows(content)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, float64(MaxScore), rows[0].Score)
	assert.Equal(t, float64(DefaultTotal), rows[0].Total)
	assert.Equal(t, float64(MinScore), rows[1].Score)
}

func TestParseRubricRowsInvalid(t *testing.T) {
	_, err := ParseRubricRows("The essay scores well overall.")
	assert.Error(t, err)
}

func TestRubricTableReplace(t *testing.T) {
	table := NewRubricTable()
	table.Replace([]RubricRow{{Criterion: "A"}, {Criterion: "B"}})
	table.Replace([]RubricRow{{Criterion: "C"}})

	rows := table.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "C", rows[0].Criterion)

	// callers get a copy
	rows[0].Criterion = "changed"
	assert.Equal(t, "C", table.Rows()[0].Criterion)

	table.Clear()
	assert.Zero(t, table.Len())
	assert.NotNil(t, table.Rows())
}

func TestReadRubricFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rubric.txt")
	require.NoError(t, os.WriteFile(path, []byte("Thesis | Excellent | Good\n"), 0o600))

	text, err := ReadRubricFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Thesis | Excellent | Good\n", text)

	_, err = ReadRubricFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
