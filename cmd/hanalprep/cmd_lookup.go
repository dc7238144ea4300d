package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steosofficial/hanalprep/analyzer"
	"github.com/steosofficial/hanalprep/faillog"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup TEXT...",
	Short: "Найти разборы префиксов текстов в собранных словарях",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLookup,
}

var failuresLimit int

var failuresCmd = &cobra.Command{
	Use:   "failures",
	Short: "Показать самые частые невыровненные остатки",
	Long: `Печатает самые частые остатки из журнала ошибок выравнивания в формате
записей таблицы исключений, чтобы их можно было проверить и дописать в файл правил.`,
	RunE: runFailures,
}

func init() {
	failuresCmd.Flags().IntVarP(&failuresLimit, "limit", "n", 20, "сколько остатков показать")
}

func runLookup(cmd *cobra.Command, args []string) error {
	d, err := analyzer.Open(cfg.RscDir)
	if err != nil {
		return err
	}
	defer d.Close()

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(d.MatchList(args))
}

func runFailures(cmd *cobra.Command, args []string) error {
	if cfg.FailureDB == "" {
		return errors.New("журнал ошибок не настроен: задайте failure_db в настройках")
	}
	ctx := cmd.Context()
	store, err := faillog.Open(ctx, cfg.FailureDB)
	if err != nil {
		return err
	}
	defer store.Close()

	top, err := store.TopResiduals(ctx, failuresLimit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, rc := range top {
		if _, err := fmt.Fprintf(out, "      - %q # %d, например [%s]\n", rc.Key, rc.Count, rc.Example); err != nil {
			return err
		}
	}
	return nil
}
