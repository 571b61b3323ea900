package report

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"testskel/internal/application/worker/pipeline"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleResult() *pipeline.Result {
	return &pipeline.Result{
		RunID:     uuid.MustParse("6f1c2b9e-0d4a-4c1e-9a51-3f0b7f7c2d10"),
		StartedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
		Items: []pipeline.ItemResult{
			{Path: "src/Cart.cs", FileName: "Cart.cs", OutputPath: "tests/Cart.cs", State: pipeline.StateWritten, Duration: 20 * time.Millisecond},
			{Path: "src/Empty.cs", FileName: "Empty.cs", State: pipeline.StateDropped, Duration: 5 * time.Millisecond},
			{Path: "src/Locked.cs", State: pipeline.StateFailed, Err: errors.New("read failed: permission denied")},
			{Path: "src/Late.cs", State: pipeline.StatePending, Err: fmt.Errorf("%w: canceled", pipeline.ErrNotProcessed)},
		},
		Read:      2,
		Generated: 2,
		Written:   1,
		Dropped:   1,
		Failed:    1,
		Skipped:   1,
	}
}

func TestFromResult(t *testing.T) {
	r := FromResult(sampleResult(), errors.New("read stage: src/Locked.cs: read failed"))

	assert.Equal(t, "6f1c2b9e-0d4a-4c1e-9a51-3f0b7f7c2d10", r.RunID)
	assert.Equal(t, "failure", r.Outcome)
	assert.Equal(t, "1.5s", r.Duration)
	assert.Equal(t, Totals{Submitted: 4, Read: 2, Generated: 2, Written: 1, Dropped: 1, Failed: 1, Skipped: 1}, r.Totals)

	require.Len(t, r.Items, 4)
	states := make([]string, 0, len(r.Items))
	for _, it := range r.Items {
		states = append(states, it.State)
	}
	assert.Equal(t, []string{"written", "dropped", "failed", "skipped"}, states)
	assert.Equal(t, "tests/Cart.cs", r.Items[0].Output)
	assert.Empty(t, r.Items[0].Error)
	assert.Contains(t, r.Items[3].Error, "not processed")
}

func TestFromResult_NilResult(t *testing.T) {
	r := FromResult(nil, nil)
	assert.Equal(t, "success", r.Outcome)
	assert.Empty(t, r.Items)
}

func TestWrite(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, Write(fs, "out/reports/run.yaml", FromResult(sampleResult(), nil)))

	data, err := afero.ReadFile(fs, "out/reports/run.yaml")
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, "success", decoded["outcome"])
	assert.NotContains(t, decoded, "error")

	totals, ok := decoded["totals"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 1, totals["written"])
	assert.Equal(t, 4, totals["submitted"])

	items, ok := decoded["items"].([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 4)
}

func TestWrite_ReadOnlyFs(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	err := Write(fs, "run.yaml", FromResult(sampleResult(), nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write report")
}
