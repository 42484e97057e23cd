package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/gpumon/internal/doctor"
)

func sampleResults() []doctor.CheckResult {
	return []doctor.CheckResult{
		{Name: "config_file", Category: "CONFIG", Status: doctor.StatusWarn, Message: "No config file found", Suggestion: "Run 'gpumon init'"},
		{Name: "config_schema", Category: "CONFIG", Status: doctor.StatusPass, Message: "Schema valid (refresh every 1s)"},
		{Name: "query_tool", Category: "GPU", Status: doctor.StatusPass, Message: "nvidia-smi: /usr/bin/nvidia-smi"},
		{Name: "query", Category: "GPU", Status: doctor.StatusFail, Message: "NVIDIA-SMI has failed", Suggestion: "line one\nline two"},
	}
}

func TestBuildDoctorOutput(t *testing.T) {
	out := buildDoctorOutput(sampleResults())

	require.Len(t, out.Categories, 2)
	assert.Equal(t, "CONFIG", out.Categories[0].Name)
	assert.Len(t, out.Categories[0].Results, 2)
	assert.Equal(t, "GPU", out.Categories[1].Name)

	assert.Equal(t, SummaryOutput{Pass: 2, Warn: 1, Fail: 1, AllClear: false}, out.Summary)
}

func TestBuildDoctorOutput_AllClear(t *testing.T) {
	out := buildDoctorOutput([]doctor.CheckResult{
		{Category: "GPU", Status: doctor.StatusPass},
	})

	assert.True(t, out.Summary.AllClear)
}

func TestOutputDoctorJSON(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, outputDoctorJSON(&buf, sampleResults()))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "categories")
	assert.Contains(t, decoded, "summary")
	assert.Contains(t, buf.String(), `"status": "fail"`)
	assert.Contains(t, buf.String(), `"all_clear": false`)
}

func TestOutputDoctorText(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, outputDoctorText(&buf, sampleResults()))
	out := buf.String()

	assert.Contains(t, out, "gpumon Diagnostic Report")
	assert.Contains(t, out, "CONFIG")
	assert.Contains(t, out, "GPU")
	assert.Contains(t, out, "NVIDIA-SMI has failed")
	assert.Contains(t, out, "line one")
	assert.Contains(t, out, "line two")
	assert.Contains(t, out, "2 issues found")
	assert.Less(t, strings.Index(out, "CONFIG"), strings.Index(out, "nvidia-smi: "), "categories render in order")
}

func TestOutputDoctorText_AllClear(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, outputDoctorText(&buf, []doctor.CheckResult{
		{Category: "GPU", Status: doctor.StatusPass, Message: "2 GPUs: 3080, 4090"},
	}))

	assert.Contains(t, buf.String(), "Everything looks good")
}

func TestRenderCheckResult_SuggestionOnlyOnIssues(t *testing.T) {
	var pass, warn strings.Builder

	renderCheckResult(&pass, doctor.CheckResult{Status: doctor.StatusPass, Message: "ok", Suggestion: "hidden"})
	renderCheckResult(&warn, doctor.CheckResult{Status: doctor.StatusWarn, Message: "meh", Suggestion: "shown"})

	assert.NotContains(t, pass.String(), "hidden")
	assert.Contains(t, warn.String(), "shown")
}
