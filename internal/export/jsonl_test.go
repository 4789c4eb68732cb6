package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jtrac-dev/jtrac/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLExporter_Export(t *testing.T) {
	report := internal.CreateTestReport("PDN-001")

	var buf bytes.Buffer
	require.NoError(t, (&JSONLExporter{}).Export(report, &buf))

	var lines []map[string]interface{}
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var obj map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &obj))
		lines = append(lines, obj)
	}

	require.Len(t, lines, 2, "one line per tracking entry")
	assert.Equal(t, "CREATE_PDN", lines[0]["eventCode"])
	assert.Equal(t, "PDN-001", lines[0]["pdnId"])
	assert.Equal(t, "UPDATE_PDN", lines[1]["eventCode"])
	assert.Equal(t, "Moved to review", lines[1]["details"])
	assert.NotContains(t, lines[0], "eventType", "empty fields are omitted")
}

func TestJSONLExporter_FallsBackToRecordID(t *testing.T) {
	report := &internal.PDNReport{
		PDN:      &internal.PDN{PDNID: "IM921"},
		Tracking: []internal.TrackingEntry{{EventCode: "UPDATE"}},
	}

	var buf bytes.Buffer
	require.NoError(t, (&JSONLExporter{}).Export(report, &buf))
	assert.JSONEq(t, `{"pdnId":"IM921","eventCode":"UPDATE"}`, buf.String())
}

func TestJSONLExporter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONLExporter{}).Export(&internal.PDNReport{}, &buf))
	assert.Empty(t, buf.String())
}
