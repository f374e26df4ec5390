// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func writeTempJSONConfig(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	f, err := os.CreateTemp(t.TempDir(), "config-*.json")
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

func validConfig() *StructuredConfig {
	cfg := defaultConfig()
	cfg.App.TokenSignKey = "secret"
	cfg.Storage.DB.DSN = "postgres://localhost/identity"
	return cfg
}

// ── newConfigBuilder ──────────────────────────────────────────────────────────

func TestNewConfigBuilder_InitialState(t *testing.T) {
	b := newConfigBuilder()
	require.NotNil(t, b)
	assert.NoError(t, b.err)
	assert.Empty(t, b.configs)
}

// ── build ─────────────────────────────────────────────────────────────────────

// TestBuild_EmptyBuilder verifies that a builder with no sources fails
// validation rather than returning an unusable zero config.
func TestBuild_EmptyBuilder(t *testing.T) {
	cfg, err := newConfigBuilder().build()
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrInvalidStorageConfigs)
}

func TestBuild_PropagatesBuilderError(t *testing.T) {
	b := newConfigBuilder()
	b.err = assert.AnError

	cfg, err := b.build()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

// TestBuild_EarlierSourceWins verifies that the first non-zero value wins and
// later sources only fill gaps.
func TestBuild_EarlierSourceWins(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs,
		&StructuredConfig{App: App{TokenIssuer: "env-issuer"}},
		&StructuredConfig{App: App{TokenIssuer: "flag-issuer", TokenSignKey: "flag-key"}},
		validConfig(),
	)

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, "env-issuer", cfg.App.TokenIssuer)
	assert.Equal(t, "flag-key", cfg.App.TokenSignKey)
	assert.Equal(t, time.Hour, cfg.App.TokenDuration)
}

func TestBuild_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *StructuredConfig)
		want   error
	}{
		{
			name:   "unknown driver",
			mutate: func(cfg *StructuredConfig) { cfg.Storage.DB.Driver = "mysql" },
			want:   ErrInvalidStorageConfigs,
		},
		{
			name:   "empty dsn",
			mutate: func(cfg *StructuredConfig) { cfg.Storage.DB.DSN = "" },
			want:   ErrInvalidStorageConfigs,
		},
		{
			name:   "missing sign key",
			mutate: func(cfg *StructuredConfig) { cfg.App.TokenSignKey = "" },
			want:   ErrInvalidAppConfigs,
		},
		{
			name:   "negative lockout attempts",
			mutate: func(cfg *StructuredConfig) { cfg.Lockout.MaxFailedAccessAttempts = -1 },
			want:   ErrInvalidLockoutConfigs,
		},
		{
			name:   "negative lockout duration",
			mutate: func(cfg *StructuredConfig) { cfg.Lockout.Duration = -time.Second },
			want:   ErrInvalidLockoutConfigs,
		},
		{
			name:   "negative sweep interval",
			mutate: func(cfg *StructuredConfig) { cfg.Workers.LockoutSweepInterval = -time.Second },
			want:   ErrInvalidWorkerConfigs,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.validate(), tt.want)
		})
	}
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, validConfig().validate())

	cfg := validConfig()
	cfg.Storage.DB.Driver = DriverSQLite
	cfg.Storage.DB.DSN = ":memory:"
	assert.NoError(t, cfg.validate())
}

// ── withEnv ───────────────────────────────────────────────────────────────────

func TestWithEnv_ReturnsBuilder(t *testing.T) {
	b := newConfigBuilder()
	assert.Same(t, b, b.withEnv())
}

func TestWithEnv_ReadsEnvVars(t *testing.T) {
	setEnvVars(t, map[string]string{
		"APP_TOKEN_ISSUER":  "env-issuer",
		"STORAGE_DB_DRIVER": "sqlite",
	})

	b := newConfigBuilder()
	b.withEnv()

	require.NoError(t, b.err)
	require.Len(t, b.configs, 1)
	assert.Equal(t, "env-issuer", b.configs[0].App.TokenIssuer)
	assert.Equal(t, "sqlite", b.configs[0].Storage.DB.Driver)
}

func TestWithEnv_SetsErrorOnBadValue(t *testing.T) {
	setEnvVars(t, map[string]string{"LOCKOUT_DURATION": "bogus"})

	b := newConfigBuilder()
	b.withEnv()

	assert.Error(t, b.err)
	assert.Empty(t, b.configs)
}

// ── withFlags ─────────────────────────────────────────────────────────────────

func TestWithFlags_AppendsParsedConfig(t *testing.T) {
	b := newConfigBuilder()
	assert.Same(t, b, b.withFlags([]string{"-token-issuer", "flag-issuer"}))

	require.NoError(t, b.err)
	require.Len(t, b.configs, 1)
	assert.Equal(t, "flag-issuer", b.configs[0].App.TokenIssuer)
}

func TestWithFlags_SetsErrorOnBadFlag(t *testing.T) {
	b := newConfigBuilder()
	b.withFlags([]string{"-nope"})

	assert.Error(t, b.err)
	assert.Empty(t, b.configs)
}

// ── withJSON ──────────────────────────────────────────────────────────────────

func TestWithJSON_NoOp_WhenNoPathSet(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{})
	assert.Same(t, b, b.withJSON())

	assert.Len(t, b.configs, 1)
	assert.NoError(t, b.err)
}

func TestWithJSON_AppendsConfig_WhenValidFile(t *testing.T) {
	payload := StructuredJSONConfig{}
	payload.App.TokenIssuer = "json-issuer"
	payload.Lockout.MaxFailedAccessAttempts = 9
	path := writeTempJSONConfig(t, payload)

	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{JSONFilePath: path})
	b.withJSON()

	require.NoError(t, b.err)
	require.Len(t, b.configs, 2)
	assert.Equal(t, "json-issuer", b.configs[1].App.TokenIssuer)
	assert.Equal(t, 9, b.configs[1].Lockout.MaxFailedAccessAttempts)
}

func TestWithJSON_SetsError_WhenFileNotFound(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{
		JSONFilePath: "/nonexistent/config.json",
	})
	b.withJSON()

	assert.Error(t, b.err)
}

// ── withDefaults ──────────────────────────────────────────────────────────────

func TestWithDefaults_FillsGaps(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{
		App:     App{TokenSignKey: "secret"},
		Storage: Storage{DB: DB{Driver: DriverSQLite, DSN: ":memory:"}},
		Lockout: Lockout{MaxFailedAccessAttempts: 3},
	})

	cfg, err := b.withDefaults().build()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Storage.DB.Driver)
	assert.Equal(t, 3, cfg.Lockout.MaxFailedAccessAttempts)
	assert.Equal(t, 5*time.Minute, cfg.Lockout.Duration)
	assert.Equal(t, "localhost:8080", cfg.Server.HTTPAddress)
	assert.Equal(t, time.Minute, cfg.Workers.LockoutSweepInterval)
	assert.Equal(t, "info", cfg.Log.Level)
}

// ── full pipeline ─────────────────────────────────────────────────────────────

func TestFullPipeline_EnvOverridesJSON(t *testing.T) {
	payload := StructuredJSONConfig{}
	payload.App.TokenSignKey = "json-key"
	payload.App.TokenIssuer = "json-issuer"
	payload.Storage.DB.Driver = DriverSQLite
	payload.Storage.DB.DSN = ":memory:"
	path := writeTempJSONConfig(t, payload)

	setEnvVars(t, map[string]string{
		"CONFIG":           path,
		"APP_TOKEN_ISSUER": "env-issuer",
	})

	cfg, err := newConfigBuilder().
		withEnv().
		withFlags(nil).
		withJSON().
		withDefaults().
		build()
	require.NoError(t, err)

	assert.Equal(t, "env-issuer", cfg.App.TokenIssuer)
	assert.Equal(t, "json-key", cfg.App.TokenSignKey)
	assert.Equal(t, ":memory:", cfg.Storage.DB.DSN)
	assert.Equal(t, time.Hour, cfg.App.TokenDuration)
}
