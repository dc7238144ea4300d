package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/steosofficial/hanalprep/align"
	"github.com/steosofficial/hanalprep/config"
	"github.com/steosofficial/hanalprep/faillog"
	"github.com/steosofficial/hanalprep/sejong"
)

var alignFlags struct {
	output   string
	dialect  string
	encoding string
}

var alignCmd = &cobra.Command{
	Use:   "align [FILE...]",
	Short: "Выровнять слоги словоформ корпуса с морфемами",
	Long: `Читает размеченный корпус Sejong (файлы или стандартный ввод) и печатает
пары "запись<TAB>м1/Т1 + м2/Т2" по одной на строку. Предложение, в котором
хотя бы одна словоформа не выровнялась, пропускается целиком.`,
	RunE: runAlign,
}

func init() {
	alignCmd.Flags().StringVarP(&alignFlags.output, "output", "o", "", "выходной файл (по умолчанию стандартный вывод)")
	alignCmd.Flags().StringVar(&alignFlags.dialect, "dialect", "", "вид корпуса: written или spoken (по умолчанию из настроек)")
	alignCmd.Flags().StringVar(&alignFlags.encoding, "encoding", "", "кодировка: utf-16le или utf-8 (по умолчанию из настроек)")
}

// alignStats - итоги выравнивания.
type alignStats struct {
	sentences int
	aligned   int
	failed    int
}

func runAlign(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()

	if alignFlags.dialect != "" {
		cfg.Align.Dialect = alignFlags.dialect
	}
	if alignFlags.encoding != "" {
		cfg.Align.Encoding = alignFlags.encoding
	}
	// Флаги перекрывают файл настроек, поэтому проверяем итог еще раз.
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("некорректные параметры выравнивания: %w", err)
	}
	dialect, err := sejong.ParseDialect(cfg.Align.Dialect)
	if err != nil {
		return err
	}
	encoding := cfg.Align.Encoding

	opts, err := cfg.AlignerOptions(logger)
	if err != nil {
		return err
	}
	aligner := align.NewAligner(opts...)

	var store *faillog.Store
	var runID string
	if cfg.FailureDB != "" {
		if store, err = faillog.Open(ctx, cfg.FailureDB); err != nil {
			return err
		}
		defer store.Close()
		if runID, err = store.NewRun(ctx); err != nil {
			return err
		}
	}

	out, err := createOutput(cmd, alignFlags.output)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("ошибка закрытия выходного файла: %w", cerr)
		}
	}()
	bw := bufio.NewWriter(out)

	if len(args) == 0 {
		args = []string{"-"}
	}
	var stats alignStats
	for _, path := range args {
		if err := alignFile(ctx, cmd, path, dialect, encoding, aligner, store, runID, bw, &stats); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("ошибка записи результата: %w", err)
	}

	logger.Info("выравнивание завершено",
		zap.Int("sentences", stats.sentences),
		zap.Int("aligned", stats.aligned),
		zap.Int("failed", stats.failed),
		zap.String("run_id", runID),
	)
	return nil
}

func alignFile(ctx context.Context, cmd *cobra.Command, path string, dialect sejong.Dialect, encoding string,
	aligner *align.Aligner, store *faillog.Store, runID string, w io.Writer, stats *alignStats) error {
	in, err := openInput(cmd, path)
	if err != nil {
		return err
	}
	defer in.Close()

	var reader *sejong.Reader
	switch encoding {
	case config.EncodingUTF8:
		reader = sejong.NewUTF8Reader(in, dialect)
	case config.EncodingUTF16LE:
		reader = sejong.NewReader(in, dialect)
	default:
		return fmt.Errorf("неизвестная кодировка корпуса: %q", encoding)
	}
	reader.Name = path

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		sent, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		stats.sentences++

		sentPairs, err := aligner.AlignSentence(*sent)
		var alignErr *align.Error
		if errors.As(err, &alignErr) {
			stats.failed++
			if store != nil {
				if err := store.Record(ctx, runID, alignErr); err != nil {
					return err
				}
			}
			continue
		}
		if err != nil {
			return err
		}

		stats.aligned++
		for _, pairs := range sentPairs {
			if err := align.FormatPairs(w, pairs); err != nil {
				return fmt.Errorf("ошибка записи результата: %w", err)
			}
		}
	}
}
