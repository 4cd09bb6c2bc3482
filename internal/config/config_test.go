package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
env: prod
server:
  address: ":8080"
auth:
  jwt_secret: file-secret
  token_ttl: 24h
database:
  in_memory: true
proxmox:
  host: pve.example.com
  node: pve01
  user: portal@pve
  password: hunter2
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "file-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "pve01", cfg.Proxmox.Node)
	assert.Equal(t, 8006, cfg.Proxmox.Port)
}

func TestLoad_MissingJWTSecretFailsFast(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	path := writeConfig(t, `
database:
  in_memory: true
proxmox:
  mock: true
`)

	_, err := Load(path)
	assert.Error(t, err, "the process must refuse to start without a signing secret")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("PROXMOX_NODE", "pve02")

	path := writeConfig(t, `
auth:
  jwt_secret: file-secret
database:
  in_memory: true
proxmox:
  mock: true
  node: pve01
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "pve02", cfg.Proxmox.Node)
}

func TestLoad_RequiresBackendsUnlessLocalModes(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: s
database:
  in_memory: true
proxmox:
  mock: false
`)

	_, err := Load(path)
	assert.Error(t, err, "a real gateway needs a host")
}
