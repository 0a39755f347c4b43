package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsFinalize(t *testing.T) {
	s := Stats{}
	for i := 100; i >= 1; i-- {
		s.Samples = append(s.Samples, time.Duration(i)*time.Microsecond)
	}
	s.Finalize()

	assert.Equal(t, time.Microsecond, s.Min)
	assert.Equal(t, 100*time.Microsecond, s.Max)
	assert.Equal(t, 50500*time.Nanosecond, s.Avg)
	assert.Equal(t, 50*time.Microsecond, s.P50)
	assert.Equal(t, 99*time.Microsecond, s.P99)
	assert.Equal(t, 100*time.Microsecond, s.Samples[0], "samples keep their order")

	empty := Stats{}
	empty.Finalize()
	assert.Zero(t, empty.Max)
}

func TestReportGenerate(t *testing.T) {
	r := &Report{Entities: 10, Iterations: 3, Seed: 7}
	r.Replace = Stats{Samples: []time.Duration{time.Millisecond}}
	r.Replace.Finalize()

	var buf bytes.Buffer
	require.NoError(t, r.Generate(&buf))
	assert.Contains(t, buf.String(), "**Pickable Entities:** 10")
	assert.Contains(t, buf.String(), "| Replace | 1ms | 1ms | 1ms | 1ms | 1ms |")
}
