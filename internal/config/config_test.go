package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:5005", cfg.Server.Addr)
	require.Equal(t, "pebble", cfg.Database.Backend)
	require.Equal(t, "data", cfg.Database.Path)
	require.Equal(t, "lz4", cfg.Database.Compression)
	require.Equal(t, "data/history.db", cfg.Database.HistoryPath)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "takd.toml")
	body := `
[server]
addr = "0.0.0.0:6006"

[database]
backend = "memory"
compression = "none"

[genesis]
owner = "0x00112233445566778899aabbccddeeff00112233"

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:6006", cfg.Server.Addr)
	require.Equal(t, "memory", cfg.Database.Backend)
	require.Equal(t, "none", cfg.Database.Compression)
	require.Equal(t, "0x00112233445566778899aabbccddeeff00112233", cfg.Genesis.Owner)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	cfg := base()
	cfg.Database.Backend = "cassandra"
	require.Error(t, Validate(cfg))

	cfg = base()
	cfg.Database.Compression = "zstd"
	require.Error(t, Validate(cfg))

	cfg = base()
	cfg.Database.Path = ""
	require.Error(t, Validate(cfg))

	cfg = base()
	cfg.Database.Backend = "memory"
	cfg.Database.Path = ""
	require.NoError(t, Validate(cfg))

	cfg = base()
	cfg.Log.Level = "verbose"
	require.Error(t, Validate(cfg))
}
