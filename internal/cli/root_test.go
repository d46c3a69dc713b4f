package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/cimillas/ticket-ledger/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--no-env-file"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func useSQLite(t *testing.T) {
	t.Helper()
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "ledger.db"))
	t.Setenv("LOG_LEVEL", "error")
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"serve", "migrate", "fund", "balance"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}

	assert.NotNil(t, cmd.PersistentFlags().Lookup("format"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("no-env-file"))

	serve, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)
	assert.NotNil(t, serve.Flags().Lookup("skip-migrations"))
}

func TestRootCommand_RejectsUnknownFormat(t *testing.T) {
	useSQLite(t)

	_, err := runCLI(t, "--format", "yaml", "balance", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRootCommand_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "redis")

	_, err := runCLI(t, "balance", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_DRIVER")
}

func TestFundAndBalance(t *testing.T) {
	useSQLite(t)

	out, err := runCLI(t, "fund", "alice", "250")
	require.NoError(t, err)
	assert.Equal(t, "alice 250\n", out)

	out, err = runCLI(t, "fund", "alice", "50")
	require.NoError(t, err)
	assert.Equal(t, "alice 300\n", out)

	out, err = runCLI(t, "--format", "json", "balance", "alice")
	require.NoError(t, err)

	var got struct {
		ID      string `json:"id"`
		Balance uint64 `json:"balance"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "alice", got.ID)
	assert.Equal(t, uint64(300), got.Balance)

	out, err = runCLI(t, "balance", "nobody")
	require.NoError(t, err)
	assert.Equal(t, "nobody 0\n", out)
}

func TestFund_InvalidAmount(t *testing.T) {
	useSQLite(t)

	_, err := runCLI(t, "fund", "alice", "ten")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid amount")

	_, err = runCLI(t, "fund", "alice", "0")
	require.Error(t, err)
}

func TestMigrate_SQLiteUpToDate(t *testing.T) {
	useSQLite(t)

	out, err := runCLI(t, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "schema up to date\n", out)

	out, err = runCLI(t, "--format", "json", "migrate")
	require.NoError(t, err)
	assert.JSONEq(t, `{"applied":[]}`, out)
}

func TestOpenBackend_Memory(t *testing.T) {
	useSQLite(t)
	t.Setenv("STORE_DRIVER", "memory")

	opts := &RootOptions{NoEnvFile: true}
	require.NoError(t, opts.init(&bytes.Buffer{}))

	backend, err := OpenBackend(context.Background(), opts.Config)
	require.NoError(t, err)
	defer backend.Close()

	applied, err := backend.Migrate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, applied)

	svc := Services(backend, opts.Config, clock.NewSystem(), opts.Logger)
	assert.NotNil(t, svc.Events)
	assert.NotNil(t, svc.Royalties)
}
