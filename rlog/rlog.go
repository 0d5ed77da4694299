// Package rlog is the engine's logging facade, grounded on
// rclone's own fs.Logf/fs.Debugf/fs.Errorf split (rclone/fs log
// helpers) but backed by github.com/sirupsen/logrus for structured,
// leveled output instead of a hand-rolled writer.
package rlog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Outcome is one of the fixed event-reporter outcome strings
// the reporter uses.
type Outcome string

const (
	OutcomeNoUpdatesNeeded Outcome = "No updates needed"
	OutcomeUpdatesAvailable Outcome = "Updates available"
	OutcomeUpdatesRetrieved Outcome = "Updates retrieved"
	OutcomeChangesApplied Outcome = "Changes applied successfully"
	OutcomeError Outcome = "Error"
	OutcomeErrorChangesMade Outcome = "Error, changes made"
	OutcomeErrorNoChangesMade Outcome = "Error, no changes made"
)

var std = logrus.New()

func init() {
	std.SetOutput(os.Stderr)
	std.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// SetLevel adjusts verbosity; takes a logrus.Level value.
func SetLevel(level logrus.Level) {
	std.SetLevel(level)
}

// Logf records a normal, always-shown message about path.
func Logf(path, format string, args...interface{}) {
	std.WithField("path", path).Infof(format, args...)
}

// Debugf records a verbose-only diagnostic about path.
func Debugf(path, format string, args...interface{}) {
	std.WithField("path", path).Debugf(format, args...)
}

// Errorf records an error-level diagnostic about path.
func Errorf(path, format string, args...interface{}) {
	std.WithField("path", path).Errorf(format, args...)
}

// LineStatus is the per-line user-visible message shape from
// "<path>: updated|deleted|missing|out of date".
type LineStatus string

const (
	StatusUpdated LineStatus = "updated"
	StatusDeleted LineStatus = "deleted"
	StatusMissing LineStatus = "missing"
	StatusOutOfDate LineStatus = "out of date"
)

// Line logs one per-line status message in the canonical form.
func Line(path string, status LineStatus) {
	std.WithField("path", path).Infof("%s: %s", path, status)
}
