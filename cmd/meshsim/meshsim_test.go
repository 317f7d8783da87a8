package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/meshmessaging/usenix23/config"
	"github.com/meshmessaging/usenix23/config/presets"
	"github.com/meshmessaging/usenix23/routing"
	"github.com/meshmessaging/usenix23/stats"
)

func execute(tb testing.TB, fs afero.Fs, args ...string) (string, error) {
	tb.Helper()
	var out bytes.Buffer
	c := newCommand(fs)
	c.SetArgs(append(args, "--log-level", "error"))
	c.SetOut(&out)
	c.SetErr(io.Discard)
	err := c.Execute()
	return out.String(), err
}

func readReport(tb testing.TB, path string) Report {
	tb.Helper()
	buf, err := os.ReadFile(path)
	require.NoError(tb, err)
	var r Report
	require.NoError(tb, json.Unmarshal(buf, &r))
	return r
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "small.toml", []byte(`
preset = "small"

[sim]
ticks = 9
`), 0o600))
	require.NoError(t, afero.WriteFile(fs, "plain.toml", []byte(`
[routing]
replication-limit = 3
`), 0o600))

	t.Run("preset from file", func(t *testing.T) {
		t.Parallel()
		cfg := config.DefaultConfig()
		require.NoError(t, loadConfig(fs, &cfg, "", "small.toml"))
		small, err := presets.Get("small")
		require.NoError(t, err)
		small.Sim.Ticks = 9
		require.Empty(t, cmp.Diff(small, cfg))
	})
	t.Run("explicit preset wins", func(t *testing.T) {
		t.Parallel()
		cfg := config.DefaultConfig()
		require.NoError(t, loadConfig(fs, &cfg, "dense", "small.toml"))
		require.Equal(t, "dense", cfg.Preset)
		require.Equal(t, 1000, cfg.Sim.Users)
		require.Equal(t, 9, cfg.Sim.Ticks)
	})
	t.Run("no preset", func(t *testing.T) {
		t.Parallel()
		cfg := config.DefaultConfig()
		require.NoError(t, loadConfig(fs, &cfg, "", "plain.toml"))
		require.Empty(t, cfg.Preset)
		require.Equal(t, 3, cfg.Routing.ReplicationLimit)
		require.Equal(t, config.DefaultConfig().Sim, cfg.Sim)
	})
	t.Run("no file", func(t *testing.T) {
		t.Parallel()
		cfg := config.DefaultConfig()
		require.NoError(t, loadConfig(fs, &cfg, "", ""))
		require.Empty(t, cmp.Diff(config.DefaultConfig(), cfg))
	})
	t.Run("unknown preset", func(t *testing.T) {
		t.Parallel()
		cfg := config.DefaultConfig()
		require.ErrorContains(t, loadConfig(fs, &cfg, "huge", ""), "preset huge is not registered")
	})
	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		cfg := config.DefaultConfig()
		require.ErrorContains(t, loadConfig(fs, &cfg, "", "missing.toml"), "read config file missing.toml")
	})
}

func TestRun(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	report := filepath.Join(t.TempDir(), "report.json")
	out, err := execute(t, fs, "run", "--users", "30", "--ticks", "10", "--report", report)
	require.NoError(t, err)

	var summary stats.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	require.Positive(t, summary.Sent)
	require.Equal(t, summary.Sent, summary.Received+summary.HopLimited+summary.InFlight)

	r := readReport(t, report)
	require.NotEmpty(t, r.ID)
	require.Equal(t, 10, r.Ticks)
	require.Equal(t, 30, r.Config.Sim.Users)
	require.Empty(t, cmp.Diff(summary, r.Summary))
}

func TestRunFlagsOverrideFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "meshsim.toml", []byte(`
[routing]
batching = true
policy = "global"

[sim]
users = 40
ticks = 5
`), 0o600))
	report := filepath.Join(t.TempDir(), "report.json")
	_, err := execute(t, fs, "run", "-c", "meshsim.toml", "--users", "20", "--batching=false", "--report", report)
	require.NoError(t, err)

	r := readReport(t, report)
	require.Equal(t, 20, r.Config.Sim.Users)
	require.Equal(t, 5, r.Config.Sim.Ticks)
	require.False(t, r.Config.Routing.Batching)
	require.Equal(t, routing.PolicyGlobal, r.Config.Routing.Policy)
	require.Zero(t, r.Summary.Reencryptions)
}

func TestRunPreset(t *testing.T) {
	t.Parallel()

	report := filepath.Join(t.TempDir(), "report.json")
	_, err := execute(t, afero.NewMemMapFs(), "run", "-p", "small", "--ticks", "4", "--report", report)
	require.NoError(t, err)

	r := readReport(t, report)
	require.Equal(t, "small", r.Preset)
	require.Equal(t, 50, r.Config.Sim.Users)
	require.Equal(t, 4, r.Ticks)
}

func TestRunErrors(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		desc string
		args []string
		err  string
	}{
		{"unknown preset", []string{"-p", "huge"}, "preset huge is not registered"},
		{"invalid routing", []string{"--hop-limit=-1"}, "hop limit"},
		{"unknown policy", []string{"--policy", "nearby"}, "unknown session policy"},
		{"unknown trace format", []string{"--trace", "t", "--trace-format", "xml"}, "unknown trace format"},
		{"missing config", []string{"-c", "missing.toml"}, "loading config"},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()
			_, err := execute(t, afero.NewMemMapFs(), append([]string{"run", "--ticks", "2"}, tc.args...)...)
			require.ErrorContains(t, err, tc.err)
		})
	}
}

func TestReplay(t *testing.T) {
	t.Parallel()

	for _, format := range []routing.Format{routing.FormatJSON, routing.FormatCBOR} {
		t.Run(string(format), func(t *testing.T) {
			t.Parallel()
			fs := afero.NewMemMapFs()
			recorded, err := execute(t, fs, "run", "--users", "30", "--ticks", "10", "--policy", "session",
				"--trace", "trace", "--trace-format", string(format))
			require.NoError(t, err)

			replayed, err := execute(t, fs, "replay", "trace", "--format", string(format))
			require.NoError(t, err)
			require.JSONEq(t, recorded, replayed)
		})
	}
	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		_, err := execute(t, afero.NewMemMapFs(), "replay", "trace")
		require.ErrorContains(t, err, "open trace")
	})
}

func TestReplayDigest(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	report := filepath.Join(t.TempDir(), "report.json")
	_, err := execute(t, fs, "run", "--users", "30", "--ticks", "5", "--trace", "trace.cbor",
		"--trace-format", "cbor", "--report", report)
	require.NoError(t, err)

	r := readReport(t, report)
	require.NotNil(t, r.Trace)
	require.Equal(t, "trace.cbor", r.Trace.Path)
	require.Equal(t, routing.FormatCBOR, r.Trace.Format)
	require.Len(t, r.Trace.Digest, 64)

	_, err = execute(t, fs, "replay", "trace.cbor", "--format", "cbor", "--digest", r.Trace.Digest)
	require.NoError(t, err)

	_, err = execute(t, fs, "replay", "trace.cbor", "--format", "cbor", "--digest", strings.Repeat("0", 64))
	require.ErrorIs(t, err, errDigestMismatch)
}

func TestCompare(t *testing.T) {
	t.Parallel()

	out, err := execute(t, afero.NewMemMapFs(), "compare", "--users", "30", "--ticks", "5", "--parallel", "2")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1+len(variants()))
	require.True(t, strings.HasPrefix(lines[0], "variant"))
	for i, v := range variants() {
		require.True(t, strings.HasPrefix(lines[i+1], v.String()), lines[i+1])
	}
}

func TestPresets(t *testing.T) {
	t.Parallel()

	out, err := execute(t, afero.NewMemMapFs(), "presets")
	require.NoError(t, err)
	require.Equal(t, presets.Options(), strings.Fields(out))
}
