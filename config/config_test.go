package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/steosofficial/hanalprep/align"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	t.Setenv(EnvFailureDB, "")
	t.Setenv(EnvRscDir, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, align.DefaultSimilarityThreshold, cfg.Align.SimilarityThreshold)
	require.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	t.Setenv(EnvFailureDB, "")
	t.Setenv(EnvRscDir, "")

	path := filepath.Join(t.TempDir(), "hanalprep.yaml")
	data := `
align:
  similarity_threshold: 0.6
  dialect: spoken
  encoding: utf-8
logging:
  level: debug
failure_db: /tmp/failures.db
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.6, cfg.Align.SimilarityThreshold)
	assert.Equal(t, "spoken", cfg.Align.Dialect)
	assert.Equal(t, EncodingUTF8, cfg.Align.Encoding)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/tmp/failures.db", cfg.FailureDB)
	// Не заданное в файле остается по умолчанию.
	assert.Equal(t, "rsc", cfg.RscDir)
}

func TestLoad_EnvPathAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rsc_dir: from-file\n"), 0o644))
	t.Setenv(EnvConfigPath, path)
	t.Setenv(EnvFailureDB, "env.db")
	t.Setenv(EnvRscDir, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.RscDir)
	assert.Equal(t, "env.db", cfg.FailureDB)

	t.Setenv(EnvRscDir, "from-env")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.RscDir)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("align: ["), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSave_Roundtrip(t *testing.T) {
	t.Setenv(EnvFailureDB, "")
	t.Setenv(EnvRscDir, "")

	cfg := Default()
	cfg.Align.RulesPath = "rules.yaml"
	path := filepath.Join(t.TempDir(), "sub", "cfg.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(c *Config)
	}{
		{name: "Порог больше 1", modify: func(c *Config) { c.Align.SimilarityThreshold = 1.5 }},
		{name: "Отрицательный порог", modify: func(c *Config) { c.Align.SimilarityThreshold = -0.1 }},
		{name: "Неизвестный вид корпуса", modify: func(c *Config) { c.Align.Dialect = "poetry" }},
		{name: "Неизвестная кодировка", modify: func(c *Config) { c.Align.Encoding = "cp949" }},
		{name: "Неизвестный уровень журнала", modify: func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestAlignerOptions(t *testing.T) {
	cfg := Default()
	opts, err := cfg.AlignerOptions(zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, opts, 2)

	cfg.Align.RulesPath = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = cfg.AlignerOptions(zap.NewNop())
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := LoggingConfig{Level: "warn"}.NewLogger(false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = LoggingConfig{Level: "warn", Development: true}.NewLogger(true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = LoggingConfig{Level: "loud"}.NewLogger(false)
	assert.Error(t, err)
}
