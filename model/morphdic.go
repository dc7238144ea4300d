package model

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/steosofficial/hanalprep/sejong"
	"github.com/steosofficial/hanalprep/trie"
)

// Разделители в значениях словаря разборов.
const (
	AnalysisDelim = "\x01" // Между разными разборами одной записи.
	MorphDelim    = "\x02" // Между морфемами одного разбора.
)

// ErrDelimiterInInput - во входных данных встретился служебный разделитель.
var ErrDelimiterInInput = errors.New("служебный разделитель во входных данных")

// BuildMorphIndex собирает словарь "запись -> все ее разборы" из строк
// выровненного корпуса "запись\tм1/Т1 + м2/Т2". Разборы одной записи
// уникальны и отсортированы.
func BuildMorphIndex(r io.Reader) (*trie.Index[string], error) {
	analyses := make(map[string]map[string]struct{})

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		surface, morphs, ok := strings.Cut(line, "\t")
		if !ok || surface == "" || morphs == "" {
			return nil, fmt.Errorf("строка %d: ожидалось \"запись\\tразбор\": %q", lineNum, line)
		}
		if strings.Contains(morphs, AnalysisDelim) || strings.Contains(morphs, MorphDelim) {
			return nil, fmt.Errorf("строка %d: %w", lineNum, ErrDelimiterInInput)
		}
		analysis := strings.ReplaceAll(morphs, "\t", AnalysisDelim)
		analysis = strings.ReplaceAll(analysis, sejong.MorphDelim, MorphDelim)

		set, ok := analyses[surface]
		if !ok {
			set = make(map[string]struct{})
			analyses[surface] = set
		}
		set[analysis] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения выровненного корпуса: %w", err)
	}

	surfaces := make([]string, 0, len(analyses))
	for surface := range analyses {
		surfaces = append(surfaces, surface)
	}
	sort.Strings(surfaces)

	ix := trie.NewIndex[string]()
	for _, surface := range surfaces {
		list := make([]string, 0, len(analyses[surface]))
		for analysis := range analyses[surface] {
			list = append(list, analysis)
		}
		sort.Strings(list)
		if err := ix.Insert(surface, strings.Join(list, AnalysisDelim)); err != nil {
			return nil, err
		}
	}
	return ix, nil
}

// ParseAnalyses разбирает значение словаря разборов обратно в морфемы.
func ParseAnalyses(value string) ([][]sejong.Morph, error) {
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, AnalysisDelim)
	result := make([][]sejong.Morph, 0, len(parts))
	for _, part := range parts {
		strs := strings.Split(part, MorphDelim)
		morphs := make([]sejong.Morph, 0, len(strs))
		for _, s := range strs {
			m, err := sejong.ParseMorph(s)
			if err != nil {
				return nil, err
			}
			morphs = append(morphs, m)
		}
		result = append(result, morphs)
	}
	return result, nil
}
