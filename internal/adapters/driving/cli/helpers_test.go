package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/ivrit-ai/explore/internal/logger"
)

// testEnv is a config dir and transcripts dir under one temp root.
type testEnv struct {
	configDir string
	dataDir   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	env := &testEnv{
		configDir: filepath.Join(root, "config"),
		dataDir:   filepath.Join(root, "json"),
	}
	require.NoError(t, os.MkdirAll(env.dataDir, 0o755))

	var logs bytes.Buffer
	logger.SetOutput(&logs)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })
	return env
}

// writeTranscript writes a nested <source>/<episode>/full_transcript.json.
func (e *testEnv) writeTranscript(t *testing.T, id, content string) {
	t.Helper()
	path := filepath.Join(e.dataDir, filepath.FromSlash(id), "full_transcript.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func (e *testEnv) indexPath() string {
	return filepath.Join(e.configDir, "index.json.gz")
}

// seed writes two valid transcripts and one malformed document.
func (e *testEnv) seed(t *testing.T) {
	t.Helper()
	e.writeTranscript(t, "kan/ep1", `{"segments": [{"text": "שלום עולם", "start": 0}, {"text": "מה שלומך", "start": 5}]}`)
	e.writeTranscript(t, "kan/ep2", `[{"text": "hello world", "start": 1.5}]`)
	e.writeTranscript(t, "kan/broken", `{"nothing": true}`)
}

// run executes the root command with args under env and returns stdout.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs(append([]string{"--config-dir", e.configDir}, withDataDir(args, e.dataDir)...))
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// withDataDir appends --data-dir for commands that accept it.
func withDataDir(args []string, dir string) []string {
	cmd, _, err := rootCmd.Find(args)
	if err != nil || cmd.Flags().Lookup("data-dir") == nil {
		return args
	}
	return append(args, "--data-dir", dir)
}

// resetFlags restores every flag of cmd and its children to its default,
// since cobra commands are package-level and keep state between runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
