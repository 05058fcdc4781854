// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/xlsx2pdf/pkg/types"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "a.xlsx", 30, "a.xlsx"},
		{"exact", "abcdef", 6, "abcdef"},
		{"ascii", "/data/reports/q1.xlsx", 10, "...q1.xlsx"},
		{"multibyte", "/daten/Übersicht-Größe.xlsx", 12, "...röße.xlsx"},
		{"tiny limit", "Größe", 2, "ße"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.n)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got), "truncate split a rune: %q", got)
			assert.LessOrEqual(t, utf8.RuneCountInString(got), tt.n)
		})
	}
}

func TestFormatHistoryOutput(t *testing.T) {
	started := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	results := []types.ConversionResult{
		{Success: true, Input: "/in/report.xlsx", Output: "/out/report.pdf", StartedAt: started, DurationMS: 812},
		{Success: false, ErrorKind: types.ErrProcessTimeout, Input: "/in/Übersicht.xlsx", StartedAt: started},
	}

	var buf bytes.Buffer
	require.NoError(t, formatHistoryOutput(&buf, "/var/lib/history.db", results, false))
	out := buf.String()

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[1], "ok")
	assert.Contains(t, lines[1], "/out/report.pdf")
	assert.Contains(t, lines[2], "failed")
	assert.Contains(t, lines[2], string(types.ErrProcessTimeout))
	assert.Contains(t, lines[2], "/in/Übersicht.xlsx")
	assert.Equal(t, "2 conversions in /var/lib/history.db", lines[4])
}

func TestFormatHistoryOutput_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatHistoryOutput(&buf, "h.db", nil, false))
	assert.Equal(t, "No conversions recorded in h.db.\n", buf.String())

	buf.Reset()
	require.NoError(t, formatHistoryOutput(&buf, "h.db", nil, true))
	assert.JSONEq(t, "[]", buf.String())
}
