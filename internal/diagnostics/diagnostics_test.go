package diagnostics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bennypowers.dev/cembundle/internal/bundle"
	"bennypowers.dev/cembundle/internal/diagnostics"
	"bennypowers.dev/cembundle/internal/logging"
)

func TestSinkHasDiagnosticsEmpty(t *testing.T) {
	s := diagnostics.NewSink()
	assert.False(t, s.HasDiagnostics())
}

func TestSinkRecordsCyclesAndSkipped(t *testing.T) {
	s := diagnostics.NewSink()
	s.RecordCycles([]bundle.Cycle{{ModuleID: "./a.js"}})
	s.RecordSkipped("./unused.js")
	assert.True(t, s.HasDiagnostics())
	assert.Len(t, s.Cycles, 1)
	assert.Len(t, s.Skipped, 1)
}

func TestSinkReportDoesNotPanic(t *testing.T) {
	s := diagnostics.NewSink()
	s.RecordCycles([]bundle.Cycle{{ModuleID: "./a.js"}})
	s.RecordSkipped("./unused.js")
	assert.NotPanics(t, func() {
		s.Report(logging.GetLogger())
	})
}
