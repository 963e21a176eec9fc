package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bianoble/botpack-sync/internal/outcome"
)

func TestHumanSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{-5, "0 B"},
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{2684354560, "2.5 GiB"},
	}

	for _, tt := range tests {
		got := humanSize(tt.bytes)
		if got != tt.want {
			t.Errorf("humanSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestReport(t *testing.T) {
	old := quiet
	quiet = true
	defer func() { quiet = old }()

	assert.NoError(t, report(outcome.Succeed("done"), false))
	assert.NoError(t, report(outcome.Skip("already up to date"), true))
	assert.EqualError(t, report(outcome.Skip("network down"), false), "skipped: network down")
	assert.Error(t, report(outcome.FullDownload(), true))
}

func TestRendererPlainLines(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(&buf, true)

	assert.NoError(t, r.Emit(0, "Downloading"))
	assert.NoError(t, r.Emit(10, "Downloading"))
	assert.NoError(t, r.Emit(150, "Extracting zip..."))
	r.Finish()

	assert.Equal(t, "  0% Downloading\n100% Extracting zip...\n", buf.String())
}

func TestRendererTerminalRewritesLine(t *testing.T) {
	var buf bytes.Buffer
	r := &renderer{out: &buf, enabled: true, tty: true}

	assert.NoError(t, r.Emit(50, "Applying incr-6 (long status)"))
	assert.NoError(t, r.Emit(100, "Done"))
	r.Finish()

	first := " 50% Applying incr-6 (long status)"
	second := "100% Done"
	pad := len(first) - len(second)
	want := "\r" + first + "\r" + second + string(bytes.Repeat([]byte(" "), pad)) + "\n"
	assert.Equal(t, want, buf.String())
}

func TestRendererDisabled(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(&buf, false)
	assert.NoError(t, r.Emit(10, "x"))
	r.Finish()
	assert.Empty(t, buf.String())
}
