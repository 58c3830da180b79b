package schedule

import (
	"testing"
	"time"

	"github.com/goliatone/go-pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScheduleSetYAML(t *testing.T) {
	data := []byte(`
schedules:
  - name: heartbeat
    pipeline: health
    every: 30s
  - name: nightly-sync
    pipeline: sync
    expression: "0 3 * * *"
    max_runs: 1
  - name: paused
    pipeline: sync
    every: 1m
    disabled: true
`)

	set, err := ParseScheduleSet(data)
	require.NoError(t, err)
	require.Len(t, set.Schedules, 3)

	assert.Equal(t, "heartbeat", set.Schedules[0].Name)
	assert.Equal(t, "30s", set.Schedules[0].Every)
	assert.Equal(t, "0 3 * * *", set.Schedules[1].Expression)
	assert.Equal(t, 1, set.Schedules[1].MaxRuns)
	assert.True(t, set.Schedules[2].Disabled)
}

func TestParseScheduleSetJSON(t *testing.T) {
	data := []byte(`{"schedules":[{"name":"heartbeat","pipeline":"health","every":"10s"}]}`)

	set, err := ParseScheduleSet(data)
	require.NoError(t, err)
	require.Len(t, set.Schedules, 1)
	assert.Equal(t, "health", set.Schedules[0].Pipeline)
}

func TestScheduleSetValidateCollectsViolations(t *testing.T) {
	set := ScheduleSet{Schedules: []ScheduleConfig{
		{Name: "", Pipeline: "p", Every: "10s"},
		{Name: "a", Pipeline: ""},
		{Name: "a", Pipeline: "p", Every: "10s"},
		{Name: "b", Pipeline: "p", Expression: "* * * * *", Every: "10s"},
		{Name: "c", Pipeline: "p", Every: "not-a-duration"},
	}}

	err := set.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "expression or every is required")
	assert.Contains(t, err.Error(), "duplicate schedule name")
	assert.Contains(t, err.Error(), "mutually exclusive")
	assert.Contains(t, err.Error(), "invalid every duration")
}

func TestApplySetUnknownPipeline(t *testing.T) {
	scheduler := NewScheduler()
	set := ScheduleSet{Schedules: []ScheduleConfig{
		{Name: "heartbeat", Pipeline: "missing", Every: "10s"},
	}}

	_, err := scheduler.ApplySet(set, map[string]Target{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown pipeline")
}

func TestApplySetSchedulesEnabledEntries(t *testing.T) {
	scheduler := NewScheduler()

	p, err := pipeline.New().Assemble()
	require.NoError(t, err)

	set := ScheduleSet{Schedules: []ScheduleConfig{
		{Name: "heartbeat", Pipeline: "health", Every: "1h"},
		{Name: "paused", Pipeline: "health", Every: "1h", Disabled: true},
	}}

	handles, err := scheduler.ApplySet(set, map[string]Target{
		"health": {Pipeline: p, Factory: func() pipeline.Context { return &tickContext{} }},
	})
	require.NoError(t, err)
	require.Len(t, handles, 1)

	handle, ok := handles["heartbeat"]
	require.True(t, ok)
	assert.Equal(t, ScheduleStatusScheduled, handle.Status())

	handle.Cancel()
	select {
	case <-handle.Done():
	case <-time.After(time.Second):
		t.Fatal("expected cancel to close the handle")
	}
}
