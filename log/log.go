// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package log is a small leveled-logging facade shared by the pe and
// surfacehash packages, so callers can plug in their own sink without
// either package depending on a particular logging library.
package log

import (
	"fmt"
)

// Level is the severity of a log record.
type Level int

// Severities recognized by Filter, lowest to highest.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the upper-case name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is the minimal sink both packages log through: a leveled record
// of alternating key/value pairs, the first of which is conventionally
// ("msg", message string).
type Logger interface {
	Log(level Level, keyvals ...interface{}) error
}

// Helper wraps a Logger with printf-style convenience methods at each
// severity, so call sites read like fmt.Printf instead of building
// keyval slices by hand.
type Helper struct {
	logger Logger
}

// NewHelper wraps logger in a Helper. A nil logger makes every call a no-op.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

func (h *Helper) log(level Level, msg string) {
	if h == nil || h.logger == nil {
		return
	}
	h.logger.Log(level, "msg", msg)
}

// Debug logs msg at LevelDebug.
func (h *Helper) Debug(msg string) { h.log(LevelDebug, msg) }

// Debugf formats and logs at LevelDebug.
func (h *Helper) Debugf(format string, args ...interface{}) {
	h.log(LevelDebug, fmt.Sprintf(format, args...))
}

// Info logs msg at LevelInfo.
func (h *Helper) Info(msg string) { h.log(LevelInfo, msg) }

// Infof formats and logs at LevelInfo.
func (h *Helper) Infof(format string, args ...interface{}) {
	h.log(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn logs msg at LevelWarn.
func (h *Helper) Warn(msg string) { h.log(LevelWarn, msg) }

// Warnf formats and logs at LevelWarn.
func (h *Helper) Warnf(format string, args ...interface{}) {
	h.log(LevelWarn, fmt.Sprintf(format, args...))
}

// Error logs msg at LevelError.
func (h *Helper) Error(msg string) { h.log(LevelError, msg) }

// Errorf formats and logs at LevelError.
func (h *Helper) Errorf(format string, args ...interface{}) {
	h.log(LevelError, fmt.Sprintf(format, args...))
}

// filter wraps a Logger and drops records below a configured level.
type filter struct {
	next  Logger
	level Level
}

// FilterOption configures a filter built by NewFilter.
type FilterOption func(*filter)

// FilterLevel sets the minimum level that passes through the filter;
// records below it are dropped before reaching next.
func FilterLevel(level Level) FilterOption {
	return func(f *filter) { f.level = level }
}

// NewFilter returns a Logger that forwards to next only the records at or
// above the level configured by opts (LevelDebug, i.e. everything, if none
// given).
func NewFilter(next Logger, opts ...FilterOption) Logger {
	f := &filter{next: next, level: LevelDebug}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *filter) Log(level Level, keyvals ...interface{}) error {
	if level < f.level {
		return nil
	}
	return f.next.Log(level, keyvals...)
}
