package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// engineStub serves the two backend wallet endpoints. createStatus controls
// the create endpoint's answer.
func engineStub(t *testing.T, createStatus int) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/backend-wallet/create":
			w.WriteHeader(createStatus)
			if createStatus == http.StatusOK {
				_, _ = io.WriteString(w, `{"result":{"walletAddress":"0xabc","type":"local"}}`)
				return
			}
			_, _ = io.WriteString(w, `{"message":"Label already exists"}`)
		case "/backend-wallet/get-all":
			_, _ = io.WriteString(w, `{"result":[{"address":"0xabc","label":"USER_ID","type":"local"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func setEngineEnv(t *testing.T, url, token string) {
	t.Helper()
	t.Setenv("ENV_FILE", "")
	require.NoError(t, os.Unsetenv("ENV_FILE"))
	t.Setenv("ENGINE_URL", url)
	t.Setenv("ENGINE_TOKEN", token)
}

func execute(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name         string
		createStatus int
		args         []string
		wantStdout   []string
		wantStderr   []string
	}{
		{
			name:         "given engine accepts, then prints created wallet and list",
			createStatus: http.StatusOK,
			wantStdout:   []string{"Wallet created:", "0xabc", "All wallets:", "USER_ID"},
		},
		{
			name:         "given create fails, then logs and still lists",
			createStatus: http.StatusBadRequest,
			args:         []string{"--label", "alice"},
			wantStdout:   []string{"All wallets:"},
			wantStderr:   []string{"Failed to create wallet", "Label already exists"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := engineStub(t, tt.createStatus)
			setEngineEnv(t, server.URL, "secret")

			stdout, stderr, err := execute(tt.args...)

			require.NoError(t, err)
			for _, s := range tt.wantStdout {
				assert.Contains(t, stdout, s)
			}
			for _, s := range tt.wantStderr {
				assert.Contains(t, stderr, s)
			}
			if tt.createStatus != http.StatusOK {
				assert.NotContains(t, stdout, "Wallet created:")
			}
		})
	}
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	setEngineEnv(t, "not a url", "")

	_, _, err := execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENGINE_URL must be a valid URL")
	assert.Contains(t, err.Error(), "ENGINE_TOKEN is required")
}

func TestSubcommands(t *testing.T) {
	server := engineStub(t, http.StatusOK)
	setEngineEnv(t, server.URL, "secret")

	t.Run("given create with label, then prints wallet", func(t *testing.T) {
		stdout, _, err := execute("create", "bob")

		require.NoError(t, err)
		assert.Contains(t, stdout, "Wallet created:")
		assert.NotContains(t, stdout, "All wallets:")
	})

	t.Run("given create without label, then fails", func(t *testing.T) {
		_, _, err := execute("create")

		assert.Error(t, err)
	})

	t.Run("given list, then prints wallets", func(t *testing.T) {
		stdout, _, err := execute("list")

		require.NoError(t, err)
		assert.Contains(t, stdout, "All wallets:")
		assert.Contains(t, stdout, "0xabc")
	})
}

func TestSubcommands_EngineError(t *testing.T) {
	server := engineStub(t, http.StatusConflict)
	setEngineEnv(t, server.URL, "secret")

	_, _, err := execute("create", "bob")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create wallet: Label already exists")
}

func TestEnvFileFlag(t *testing.T) {
	server := engineStub(t, http.StatusOK)
	setEngineEnv(t, "", "")
	require.NoError(t, os.Unsetenv("ENGINE_URL"))
	require.NoError(t, os.Unsetenv("ENGINE_TOKEN"))

	path := filepath.Join(t.TempDir(), "demo.env")
	require.NoError(t, os.WriteFile(path, []byte("ENGINE_URL="+server.URL+"\nENGINE_TOKEN=secret\n"), 0o600))

	stdout, _, err := execute("list", "--env-file", path)

	require.NoError(t, err)
	assert.Contains(t, stdout, "0xabc")
}
