package export

import (
	"bytes"
	"testing"

	"github.com/jtrac-dev/jtrac/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestYAMLExporter_Export(t *testing.T) {
	report := internal.CreateTestReport("PDN-001")

	var buf bytes.Buffer
	require.NoError(t, (&YAMLExporter{}).Export(report, &buf))
	assert.Contains(t, buf.String(), "pdn_id: PDN-001")

	var decoded internal.PDNReport
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.NotNil(t, decoded.PDN)
	assert.Equal(t, report.PDN.Description, decoded.PDN.Description)
	assert.Equal(t, report.Components[0].Component, decoded.Components[0].Component)
	assert.Equal(t, "CREATE_PDN", decoded.Tracking[0].EventCode)
}
