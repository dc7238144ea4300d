package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/steosofficial/hanalprep/model"
	"github.com/steosofficial/hanalprep/trie"
)

var dicFlags struct {
	input  string
	output string
}

var morphDicCmd = &cobra.Command{
	Use:   "morph-dic",
	Short: "Собрать словарь разборов из выровненного корпуса",
	Long: `Читает вывод команды align и пишет <stem>.trie и <stem>.val: для каждой
записи все ее уникальные разборы.`,
	RunE: runMorphDic,
}

var stateFeatDicCmd = &cobra.Command{
	Use:   "state-feat-dic",
	Short: "Собрать словарь весов признаков состояний из дампа модели",
	RunE:  runStateFeatDic,
}

var transMatCmd = &cobra.Command{
	Use:   "trans-mat",
	Short: "Собрать матрицу переходов между тегами из дампа модели",
	Long: `Пишет плотную матрицу |L|x|L| значений float32 (little endian): строка - тег,
в который переходим, столбец - тег, из которого. Теги идут по возрастанию.`,
	RunE: runTransMat,
}

func init() {
	for _, cmd := range []*cobra.Command{morphDicCmd, stateFeatDicCmd, transMatCmd} {
		cmd.Flags().StringVarP(&dicFlags.input, "input", "i", "", "входной файл (по умолчанию стандартный ввод)")
		cmd.Flags().StringVarP(&dicFlags.output, "output", "o", "", "выходной файл или основа имени словаря")
		_ = cmd.MarkFlagRequired("output")
	}
}

func runMorphDic(cmd *cobra.Command, args []string) error {
	in, err := openInput(cmd, dicFlags.input)
	if err != nil {
		return err
	}
	defer in.Close()

	ix, err := model.BuildMorphIndex(in)
	if err != nil {
		return err
	}
	compiled := trie.Compile(ix)
	if err := trie.WriteStrings(dicFlags.output, compiled); err != nil {
		return err
	}
	logger.Info("словарь разборов записан",
		zap.String("stem", dicFlags.output),
		zap.Int("nodes", len(compiled.Records)),
		zap.Int("values", len(compiled.Values)),
	)
	return nil
}

func runStateFeatDic(cmd *cobra.Command, args []string) error {
	in, err := openInput(cmd, dicFlags.input)
	if err != nil {
		return err
	}
	defer in.Close()

	ix, err := model.ReadStateFeatures(in, model.DefaultLabels(), logger)
	if err != nil {
		return err
	}
	compiled := trie.Compile(ix)
	if err := trie.WriteFloats(dicFlags.output, compiled); err != nil {
		return err
	}
	logger.Info("словарь признаков записан",
		zap.String("stem", dicFlags.output),
		zap.Int("nodes", len(compiled.Records)),
		zap.Int("values", len(compiled.Values)),
	)
	return nil
}

func runTransMat(cmd *cobra.Command, args []string) error {
	in, err := openInput(cmd, dicFlags.input)
	if err != nil {
		return err
	}
	defer in.Close()

	labels := model.DefaultLabels()
	m, err := model.ReadTransitions(in, labels)
	if err != nil {
		return err
	}

	write := func(w io.Writer) error {
		_, err := m.WriteTo(w)
		return err
	}
	if dicFlags.output == "-" {
		err = write(cmd.OutOrStdout())
	} else {
		err = trie.WriteAtomic(dicFlags.output, write)
	}
	if err != nil {
		return fmt.Errorf("ошибка записи матрицы переходов: %w", err)
	}
	logger.Info("матрица переходов записана", zap.String("path", dicFlags.output), zap.Int("labels", len(labels)))
	return nil
}
