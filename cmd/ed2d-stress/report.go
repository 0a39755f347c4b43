package main

import (
	"io"
	"runtime"
	"slices"
	"text/template"
	"time"
)

type Report struct {
	Entities   int
	Iterations int
	Seed       int64

	Replace      Stats
	Add          Stats
	FrameReplace Stats
	FrameAdd     Stats

	Selected      int
	TotalTime     time.Duration
	MemStatsStart runtime.MemStats
	MemStatsEnd   runtime.MemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	P50     time.Duration
	P99     time.Duration
	Samples []time.Duration
}

// Finalize computes the summary fields from Samples.
func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	sorted := slices.Clone(s.Samples)
	slices.Sort(sorted)

	var total time.Duration
	for _, sample := range sorted {
		total += sample
	}
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Avg = total / time.Duration(len(sorted))
	s.P50 = percentile(sorted, 50)
	s.P99 = percentile(sorted, 99)
}

// percentile uses the nearest rank method on sorted samples.
func percentile(sorted []time.Duration, p int) time.Duration {
	rank := (p*len(sorted) + 99) / 100
	return sorted[max(rank-1, 0)]
}

const reportTemplate = `
# Selection Sync Stress Report

## Configuration
- **Pickable Entities:** {{.Entities}}
- **Selection Changes per Mode:** {{.Iterations}}
- **Seed:** {{.Seed}}

## Sync Only
| Mode | Avg | P50 | P99 | Min | Max |
|------|-----|-----|-----|-----|-----|
{{row "Replace" .Replace}}
{{row "Add" .Add}}

## Full Editor Frame
| Mode | Avg | P50 | P99 | Min | Max |
|------|-----|-----|-----|-----|-----|
{{row "Replace" .FrameReplace}}
{{row "Add" .FrameAdd}}

- **Selected at End:** {{.Selected}}
- **Total Time:** {{.TotalTime}}

## Memory Usage (Raw Bytes)
- Heap Alloc:  {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc: {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Num GC:      {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
- GC Pause:    {{ns .MemStatsEnd.PauseTotalNs}}
`

var reportFuncs = template.FuncMap{
	"row": func(name string, s Stats) string {
		return "| " + name + " | " + s.Avg.String() + " | " + s.P50.String() + " | " +
			s.P99.String() + " | " + s.Min.String() + " | " + s.Max.String() + " |"
	},
	"bsub": func(a, b uint64) int64 {
		return int64(a) - int64(b)
	},
	"usub": func(a, b uint32) uint32 {
		return a - b
	},
	"ns": func(ns uint64) string {
		return time.Duration(ns).String()
	},
}

// Generate writes the report as markdown.
func (r *Report) Generate(w io.Writer) error {
	tmpl, err := template.New("report").Funcs(reportFuncs).Parse(reportTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, r)
}
