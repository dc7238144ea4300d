// Команда hanalprep готовит данные для морфологического тэггера корейского языка:
// выравнивает корпус Sejong, собирает словари и матрицу переходов.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/steosofficial/hanalprep/config"
)

var (
	// Глобальные флаги.
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "hanalprep",
	Short: "Подготовка данных для морфологического тэггера корейского языка",
	Long: `hanalprep превращает размеченный корпус Sejong и обученную модель CRF
в файлы, которые читает тэггер:

  align           выравнивание слогов словоформ с морфемами
  morph-dic       словарь разборов (morph.trie, morph.val)
  state-feat-dic  словарь весов признаков (state_feat.trie, state_feat.val)
  trans-mat       матрица переходов между тегами (trans_mat.bin)`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
		if err = cfg.Validate(); err != nil {
			return fmt.Errorf("некорректные настройки: %w", err)
		}
		if logger, err = cfg.Logging.NewLogger(verbose); err != nil {
			return fmt.Errorf("ошибка инициализации журнала: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "файл настроек YAML (или переменная "+config.EnvConfigPath+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "подробный журнал")

	rootCmd.AddCommand(alignCmd)
	rootCmd.AddCommand(morphDicCmd)
	rootCmd.AddCommand(stateFeatDicCmd)
	rootCmd.AddCommand(transMatCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(failuresCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// --- ВСПОМОГАТЕЛЬНЫЕ ФУНКЦИИ ---

// openInput открывает файл или стандартный ввод для "" и "-".
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия входного файла: %w", err)
	}
	return f, nil
}

// createOutput создает файл или возвращает стандартный вывод для "" и "-".
func createOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания выходного файла: %w", err)
	}
	return f, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
