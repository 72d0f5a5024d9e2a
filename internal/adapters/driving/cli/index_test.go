package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivrit-ai/explore/internal/core/domain"
)

func TestIndexCmd_Subcommands(t *testing.T) {
	names := make([]string, 0, len(indexCmd.Commands()))
	for _, c := range indexCmd.Commands() {
		names = append(names, c.Name())
	}

	assert.ElementsMatch(t, []string{"build", "validate", "status"}, names)
}

func TestIndexBuild(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	out, err := env.run(t, "index", "build")

	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 2 episodes (1 skipped)")
	assert.Contains(t, out, env.indexPath())
	assert.FileExists(t, env.indexPath())
}

func TestIndexBuild_OutFlag(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	out := filepath.Join(t.TempDir(), "custom.json.gz")

	_, err := env.run(t, "index", "build", "--out", out)

	require.NoError(t, err)
	assert.FileExists(t, out)
	assert.NoFileExists(t, env.indexPath())
}

func TestIndexBuild_MissingDataDir(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.RemoveAll(env.dataDir))

	_, err := env.run(t, "index", "build")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestIndexValidate(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	_, err := env.run(t, "index", "build")
	require.NoError(t, err)

	t.Run("default path", func(t *testing.T) {
		out, err := env.run(t, "index", "validate")

		require.NoError(t, err)
		assert.Contains(t, out, "OK, 2 episodes, 3 segments")
	})

	t.Run("explicit path", func(t *testing.T) {
		out, err := env.run(t, "index", "validate", env.indexPath())

		require.NoError(t, err)
		assert.Contains(t, out, env.indexPath()+": OK")
	})

	t.Run("corrupt container", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json.gz")
		require.NoError(t, os.WriteFile(bad, []byte("junk"), 0o644))

		_, err := env.run(t, "index", "validate", bad)

		assert.ErrorIs(t, err, domain.ErrIndexLoad)
	})

	t.Run("missing container", func(t *testing.T) {
		_, err := env.run(t, "index", "validate", filepath.Join(t.TempDir(), "none.json.gz"))

		assert.ErrorIs(t, err, domain.ErrIndexLoad)
	})
}

func TestIndexStatus(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	out, err := env.run(t, "index", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "State:       missing")

	_, err = env.run(t, "index", "build")
	require.NoError(t, err)

	out, err = env.run(t, "index", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "State:       fresh")
	assert.Contains(t, out, "ORIGIN")
	assert.Contains(t, out, "built")

	env.writeTranscript(t, "kan/ep3", `[{"text": "new episode", "start": 0}]`)

	out, err = env.run(t, "index", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "State:       stale")
}
