package model

import (
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/steosofficial/hanalprep/trie"
)

// StateFeatureKey - ключ словаря признаков: буква метки ('A' + индекс метки) и признак.
func StateFeatureKey(labelIdx int, feature string) string {
	return string(rune('A'+labelIdx)) + feature
}

// ReadStateFeatures читает блок STATE_FEATURES дампа модели в дерево
// "ключ признака -> вес". Некорректные строки пропускаются с записью в журнал.
// Нулевой вес сохраняется как обычное значение.
func ReadStateFeatures(r io.Reader, labels []string, logger *zap.Logger) (*trie.Index[float32], error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	index := make(map[string]int, len(labels))
	for i, label := range labels {
		index[label] = i
	}

	ix := trie.NewIndex[float32]()
	var skipped int
	err := scanBlock(r, stateFeaturesHeader, func(lineNum int, line string) error {
		if lineNum%progressEvery == 0 {
			logger.Info("чтение признаков состояний", zap.Int("line", lineNum))
		}
		feature, label, weight, err := parseWeightLine(line)
		if err == nil {
			err = addStateFeature(ix, index, feature, label, weight)
		}
		if err != nil {
			skipped++
			logger.Error("строка признака пропущена", zap.Int("line", lineNum), zap.String("text", line), zap.Error(err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("признаки состояний прочитаны", zap.Int("features", ix.Len()), zap.Int("skipped", skipped))
	return ix, nil
}

func addStateFeature(ix *trie.Index[float32], labels map[string]int, feature, label, weight string) error {
	labelIdx, ok := labels[label]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	w, err := strconv.ParseFloat(weight, 32)
	if err != nil {
		return fmt.Errorf("ошибка разбора веса: %w", err)
	}
	return ix.Insert(StateFeatureKey(labelIdx, feature), float32(w))
}
