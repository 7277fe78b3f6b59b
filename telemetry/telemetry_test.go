package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/xbrl/output"
)

func TestNoOpCollector(t *testing.T) {
	collector := noOpCollector{}

	timer := collector.Start("pipeline.run")
	timer.Child("extract").End()
	timer.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)
	assert.Equal(t, 0, buf.Len())
	assert.Zero(t, collector.Spans())
}

func TestFromContext(t *testing.T) {
	_, ok := FromContext(context.Background()).(noOpCollector)
	assert.True(t, ok)

	collector := NewTimingCollector()
	ctx := WithCollector(context.Background(), collector)
	got, ok := FromContext(ctx).(*TimingCollector)
	assert.True(t, ok)
	assert.True(t, got == collector)
}

func TestStartTimerUsesContextCollector(t *testing.T) {
	collector := NewTimingCollector()
	ctx := WithCollector(context.Background(), collector)

	timer := StartTimer(ctx, "validate")
	timer.End()

	spans := collector.Spans()
	assert.Equal(t, 1, len(spans))
	assert.Equal(t, "validate", spans[0].Name)

	// Without a collector nothing is recorded and nothing panics.
	StartTimer(context.Background(), "ignored").End()
}

func TestTimingCollectorTree(t *testing.T) {
	collector := NewTimingCollector()

	root := collector.Start("pipeline.run")
	extract := root.Child("extract")
	time.Sleep(2 * time.Millisecond)
	extract.End()
	tag := root.Child("tag")
	section := tag.Child("IncomeStatement")
	section.End()
	tag.End()
	root.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, 4, len(lines))
	assert.True(t, strings.HasPrefix(lines[0], "pipeline.run: "))
	assert.True(t, strings.HasPrefix(lines[1], "├─ extract: "))
	assert.True(t, strings.HasPrefix(lines[2], "└─ tag: "))
	assert.True(t, strings.HasPrefix(lines[3], "   └─ IncomeStatement: "))

	spans := collector.Spans()
	names := make([]string, len(spans))
	depths := make([]int, len(spans))
	for i, s := range spans {
		names[i], depths[i] = s.Name, s.Depth
	}
	assert.Equal(t, []string{"pipeline.run", "extract", "tag", "IncomeStatement"}, names)
	assert.Equal(t, []int{0, 1, 1, 2}, depths)
	assert.True(t, spans[1].Duration >= 2*time.Millisecond)
}

func TestTimingCollectorNestsSequentialStarts(t *testing.T) {
	collector := NewTimingCollector()

	outer := collector.Start("run")
	inner := collector.Start("validate")
	inner.End()
	sibling := collector.Start("tag")
	sibling.End()
	outer.End()

	spans := collector.Spans()
	assert.Equal(t, 3, len(spans))
	assert.Equal(t, 1, spans[1].Depth)
	assert.Equal(t, 1, spans[2].Depth)
}

func TestReportWithStyles(t *testing.T) {
	collector := NewTimingCollector()
	root := collector.Start("pipeline.run")
	root.Child("extract").End()
	root.End()

	var buf bytes.Buffer
	collector.Report(&buf, output.NewStyles(&buf))
	assert.Contains(t, buf.String(), "pipeline.run")
	assert.Contains(t, buf.String(), "extract")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		want     string
	}{
		{1 * time.Millisecond, "1ms"},
		{100 * time.Millisecond, "100ms"},
		{999 * time.Millisecond, "999ms"},
		{1 * time.Second, "1.00s"},
		{1500 * time.Millisecond, "1.50s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.duration))
	}
}

func TestTimingCollectorEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	NewTimingCollector().Report(&buf, nil)
	assert.Equal(t, 0, buf.Len())
}
