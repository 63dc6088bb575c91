package simulate

import (
	"github.com/sirupsen/logrus"

	"transitsim/internal/scenario"
	"transitsim/internal/timectx"
)

// logRecorder appends every event to the deterministic, ordered log used
// in the external result while also emitting it through logrus for
// operators watching a live run (spec §2 ambient-stack logging, §6 logs
// shape).
type logRecorder struct {
	tc      *timectx.TimeContext
	entries []scenario.LogEntry
	logger  *logrus.Entry
}

func newLogRecorder(tc *timectx.TimeContext, logger *logrus.Entry) *logRecorder {
	return &logRecorder{tc: tc, logger: logger}
}

func (r *logRecorder) log(simTime float64, component, message string) {
	r.entries = append(r.entries, scenario.LogEntry{
		Time:      r.tc.SimToReal(simTime),
		Component: component,
		Message:   message,
	})
	r.logger.WithFields(logrus.Fields{
		"component": component,
		"sim_time":  simTime,
	}).Info(message)
}
