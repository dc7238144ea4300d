// Пакет config содержит настройки подготовки данных: выравнивание, журнал,
// пути к ресурсам. Настройки читаются из YAML и переопределяются окружением.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/steosofficial/hanalprep/align"
	"github.com/steosofficial/hanalprep/sejong"
)

// Переменные окружения.
const (
	EnvConfigPath = "HANALPREP_CONFIG"
	EnvFailureDB  = "HANALPREP_FAILURE_DB"
	EnvRscDir     = "HANALPREP_RSC_DIR"
)

// Кодировки корпуса.
const (
	EncodingUTF16LE = "utf-16le"
	EncodingUTF8    = "utf-8"
)

// Config - все настройки.
type Config struct {
	Align     AlignConfig   `yaml:"align"`
	Logging   LoggingConfig `yaml:"logging"`
	FailureDB string        `yaml:"failure_db"` // Пусто - ошибки выравнивания не сохраняются.
	RscDir    string        `yaml:"rsc_dir"`
}

// AlignConfig - настройки выравнивания и чтения корпуса.
type AlignConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	RulesPath           string  `yaml:"rules_path"` // Пусто - встроенная таблица исключений.
	Dialect             string  `yaml:"dialect"`
	Encoding            string  `yaml:"encoding"`
}

// LoggingConfig - настройки журнала.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default возвращает настройки по умолчанию.
func Default() *Config {
	return &Config{
		Align: AlignConfig{
			SimilarityThreshold: align.DefaultSimilarityThreshold,
			Dialect:             "written",
			Encoding:            EncodingUTF16LE,
		},
		Logging: LoggingConfig{Level: "info"},
		RscDir:  "rsc",
	}
}

// Load читает настройки из YAML-файла. Если файла нет, возвращаются настройки по умолчанию.
// Пустой path означает путь из HANALPREP_CONFIG.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("ошибка чтения настроек: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("ошибка разбора настроек: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save пишет настройки в YAML-файл.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ошибка создания каталога настроек: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("ошибка сериализации настроек: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("ошибка записи настроек: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if path := os.Getenv(EnvFailureDB); path != "" {
		c.FailureDB = path
	}
	if dir := os.Getenv(EnvRscDir); dir != "" {
		c.RscDir = dir
	}
}

// Validate проверяет настройки.
func (c *Config) Validate() error {
	if t := c.Align.SimilarityThreshold; t < 0 || t > 1 {
		return fmt.Errorf("порог сходства %v вне [0, 1]", t)
	}
	if _, err := sejong.ParseDialect(c.Align.Dialect); err != nil {
		return err
	}
	switch c.Align.Encoding {
	case EncodingUTF16LE, EncodingUTF8:
	default:
		return fmt.Errorf("неизвестная кодировка корпуса: %q", c.Align.Encoding)
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("неизвестный уровень журнала: %q", c.Logging.Level)
	}
	return nil
}

// AlignerOptions собирает опции выравнивателя из настроек.
func (c *Config) AlignerOptions(logger *zap.Logger) ([]align.Option, error) {
	opts := []align.Option{
		align.WithSimilarityThreshold(c.Align.SimilarityThreshold),
		align.WithLogger(logger),
	}
	if c.Align.RulesPath != "" {
		rules, err := align.LoadRules(c.Align.RulesPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, align.WithRules(rules))
	}
	return opts, nil
}

// NewLogger создает журнал zap по настройкам. verbose включает уровень debug.
func (c LoggingConfig) NewLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("неизвестный уровень журнала: %q", c.Level)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
