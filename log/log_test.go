// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestFilterDropsBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewFilter(NewStdLogger(&buf), FilterLevel(LevelWarn))
	helper := NewHelper(logger)

	helper.Debug("should not appear")
	helper.Warnf("disk at %d%%", 90)

	got := buf.String()
	if strings.Contains(got, "should not appear") {
		t.Fatalf("expected debug record to be filtered out, got: %q", got)
	}
	if !strings.Contains(got, "disk at 90%") {
		t.Fatalf("expected warn record in output, got: %q", got)
	}
}

func TestHelperNilLoggerIsNoop(t *testing.T) {
	var helper *Helper
	helper.Infof("this must not panic: %d", 1)
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}
