package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_DefaultsAndEnv(t *testing.T) {
	p := writeFile(t, "config.yaml", `
app:
  env: test
db:
  driver: sqlite
  dsn: "file:test.db"
oauth:
  google:
    client_id: g-id
    client_secret: g-secret
`)
	t.Setenv("APP_SESSION_SECRET", "from-env")

	c := Load(p)
	require.Equal(t, "item-catalog", c.App.Name)
	require.Equal(t, "test", c.App.Env)
	require.Equal(t, 5000, c.App.HTTP.Port)
	require.EqualValues(t, 300, c.App.HTTP.MaxConcurrent)
	require.Equal(t, "memory", c.Session.Store)
	require.Equal(t, "catalog_session", c.Session.CookieName)
	require.Equal(t, "from-env", c.Session.Secret)
	require.Equal(t, 10, c.OAuth.TimeoutSec)
	require.Equal(t, "file:test.db", c.DB.DSN)

	id, secret, err := c.OAuth.Google.Secrets("client_id", "client_secret")
	require.NoError(t, err)
	require.Equal(t, "g-id", id)
	require.Equal(t, "g-secret", secret)
}

func TestProvider_SecretsFile(t *testing.T) {
	g := Provider{SecretsFile: writeFile(t, "client_secrets.json", `{"web":{"client_id":"123.apps","client_secret":"shh"}}`)}
	id, secret, err := g.Secrets("client_id", "client_secret")
	require.NoError(t, err)
	require.Equal(t, "123.apps", id)
	require.Equal(t, "shh", secret)

	fb := Provider{ClientID: "ignored", SecretsFile: writeFile(t, "fb_client_secrets.json", `{"web":{"app_id":"987","app_secret":"fbs"}}`)}
	id, secret, err = fb.Secrets("app_id", "app_secret")
	require.NoError(t, err)
	require.Equal(t, "987", id)
	require.Equal(t, "fbs", secret)

	_, _, err = Provider{SecretsFile: filepath.Join(t.TempDir(), "missing.json")}.Secrets("client_id", "client_secret")
	require.Error(t, err)
}
