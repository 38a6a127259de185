package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/gallery"
	"github.com/sagarc03/gallery/config"
)

// resetFlags restores every flag of the command tree to its default so
// values set by one test do not leak into the next.
func resetFlags(t *testing.T, cmd *cobra.Command) {
	t.Helper()

	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			require.NoError(t, sv.Replace(nil))
		} else {
			require.NoError(t, f.Value.Set(f.DefValue))
		}
		f.Changed = false
	}

	cmd.PersistentFlags().VisitAll(reset)
	cmd.LocalFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(t, sub)
	}
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	resetFlags(t, rootCmd)
	t.Cleanup(func() { resetFlags(t, rootCmd) })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}

	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestSetupLogging_File(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "gallery.log")
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	closer, err := setupLogging(config.LogConfig{Level: "info", File: logFile, MaxSizeMB: 1}, "prod")
	require.NoError(t, err)
	require.NotNil(t, closer)

	slog.Info("hello", "k", "v")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Contains(t, entry, "ts")
}

func TestCountriesCommand_JSON(t *testing.T) {
	out := execute(t, "countries", "--json")

	var countries []gallery.Country
	require.NoError(t, json.Unmarshal([]byte(out), &countries))
	assert.Len(t, countries, 24)
}

func TestCountriesCommand_CustomFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "countries.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- {slug: atlantis, name: Atlantis}\n"), 0o644))

	out := execute(t, "countries", "--countries-file", path)

	assert.Contains(t, out, "SLUG")
	assert.Contains(t, out, "atlantis")
	assert.Contains(t, out, "Atlantis")
}

func TestCountriesCommand_FlagsDoNotLeak(t *testing.T) {
	execute(t, "countries", "--json")

	out := execute(t, "countries")

	assert.Contains(t, out, "SLUG")
	assert.Contains(t, out, "finland")
}

func TestRebuildCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "spain"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spain", "1700000000000-abc-beach.png"), []byte("png"), 0o644))

	out := execute(t, "rebuild", "--storage-path", dir, "--countries-file", "")

	assert.Contains(t, out, "adopted 1 file(s), pruned 0 record(s)")

	data, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"originalName": "beach.png"`)
}
