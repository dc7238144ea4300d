// Пакет analyzer загружает готовые словари тэггера (результат подготовки данных)
// и дает к ним доступ: разборы слогов по общему префиксу, веса признаков состояний
// и переходов. Словари ключей отображаются в память через mmap, без копирования.
package analyzer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/steosofficial/hanalprep/model"
	"github.com/steosofficial/hanalprep/sejong"
	"github.com/steosofficial/hanalprep/trie"
)

// --- ПЕРЕМЕННЫЕ ОКРУЖЕНИЯ ---

// EnvRscDir - имя переменной окружения для переопределения каталога словарей.
const EnvRscDir = "HANALPREP_RSC_DIR"

// DefaultRscDir - каталог словарей по умолчанию.
const DefaultRscDir = "rsc"

// Имена файлов в каталоге словарей.
const (
	MorphStem     = "morph"      // morph.trie + morph.val
	StateFeatStem = "state_feat" // state_feat.trie + state_feat.val
	TransMatFile  = "trans_mat.bin"
)

// --- СТРУКТУРЫ ДАННЫХ ---

// MorphMatch - префикс текста, найденный в словаре разборов, и все его разборы.
type MorphMatch struct {
	Surface  string           `json:"surface"`
	Len      int              `json:"len"` // Длина префикса в байтах.
	Analyses [][]sejong.Morph `json:"analyses"`
}

// TextMatches - совпадения для одного текста из пакета.
type TextMatches struct {
	Text    string       `json:"text"`
	Matches []MorphMatch `json:"matches"`
}

// Dictionaries - набор словарей тэггера. После загрузки только читается,
// поэтому безопасен для одновременного использования.
type Dictionaries struct {
	morph         *trie.Dict
	morphAnalyses [][][]sejong.Morph

	stateFeat       *trie.Dict
	stateFeatValues []float32

	trans    *model.TransMatrix
	tagIndex map[string]int
}

// --- ЗАГРУЗКА ---

// LoadDictionaries загружает словари из каталога HANALPREP_RSC_DIR, а если
// переменная не задана - из ./rsc.
func LoadDictionaries() (*Dictionaries, error) {
	dir := os.Getenv(EnvRscDir)
	if dir == "" {
		dir = DefaultRscDir
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf(
			"каталог словарей '%s' не найден. Соберите словари командами morph-dic, state-feat-dic и trans-mat "+
				"либо установите переменную окружения %s",
			dir, EnvRscDir,
		)
	}
	return Open(dir)
}

// Open загружает словари из каталога dir.
func Open(dir string) (_ *Dictionaries, err error) {
	d := &Dictionaries{tagIndex: make(map[string]int)}
	defer func() {
		if err != nil {
			_ = d.Close()
		}
	}()

	// 1. Словарь разборов: ключи через mmap, значения разбираются сразу,
	// чтобы поврежденный файл обнаружился при загрузке, а не при поиске.
	stem := filepath.Join(dir, MorphStem)
	if d.morph, err = trie.OpenDict(stem + trie.KeyExt); err != nil {
		return nil, fmt.Errorf("словарь разборов: %w", err)
	}
	values, err := trie.OpenStringValues(stem + trie.ValueExt)
	if err != nil {
		return nil, fmt.Errorf("словарь разборов: %w", err)
	}
	if err = checkValueCount(d.morph, len(values)); err != nil {
		return nil, fmt.Errorf("словарь разборов: %w", err)
	}
	d.morphAnalyses = make([][][]sejong.Morph, len(values))
	for i, v := range values {
		if d.morphAnalyses[i], err = model.ParseAnalyses(v); err != nil {
			return nil, fmt.Errorf("словарь разборов, значение %d: %w", i, err)
		}
	}

	// 2. Словарь признаков состояний.
	stem = filepath.Join(dir, StateFeatStem)
	if d.stateFeat, err = trie.OpenDict(stem + trie.KeyExt); err != nil {
		return nil, fmt.Errorf("словарь признаков: %w", err)
	}
	if d.stateFeatValues, err = trie.OpenFloatValues(stem + trie.ValueExt); err != nil {
		return nil, fmt.Errorf("словарь признаков: %w", err)
	}
	if err = checkValueCount(d.stateFeat, len(d.stateFeatValues)); err != nil {
		return nil, fmt.Errorf("словарь признаков: %w", err)
	}

	// 3. Матрица переходов.
	labels := model.DefaultLabels()
	for i, label := range labels {
		d.tagIndex[label] = i
	}
	file, err := os.Open(filepath.Join(dir, TransMatFile))
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия матрицы переходов: %w", err)
	}
	defer file.Close()
	if d.trans, err = model.ReadTransMatrix(file, labels); err != nil {
		return nil, err
	}

	return d, nil
}

func checkValueCount(dict *trie.Dict, values int) error {
	if dict.ValueCount() > values {
		return fmt.Errorf("ключи ссылаются на %d значений, записано %d: %w", dict.ValueCount(), values, trie.ErrCorrupt)
	}
	return nil
}

// Close освобождает отображенную память.
func (d *Dictionaries) Close() error {
	var errs []error
	if d.morph != nil {
		errs = append(errs, d.morph.Close())
	}
	if d.stateFeat != nil {
		errs = append(errs, d.stateFeat.Close())
	}
	return errors.Join(errs...)
}

// --- ПОИСК ---

// MorphMatches возвращает все префиксы текста, найденные в словаре разборов,
// от коротких к длинным.
func (d *Dictionaries) MorphMatches(text string) []MorphMatch {
	matches := d.morph.CommonPrefixMatches(text)
	if len(matches) == 0 {
		return nil
	}
	result := make([]MorphMatch, len(matches))
	for i, m := range matches {
		result[i] = MorphMatch{
			Surface:  text[:m.Len],
			Len:      m.Len,
			Analyses: d.morphAnalyses[m.ValueIdx],
		}
	}
	return result
}

// StateFeature возвращает вес признака для тега; 0, если признака нет.
func (d *Dictionaries) StateFeature(tag, feature string) float32 {
	tagIdx, ok := d.tagIndex[tag]
	if !ok {
		return 0
	}
	idx, ok := d.stateFeat.Find(model.StateFeatureKey(tagIdx, feature))
	if !ok {
		return 0
	}
	return d.stateFeatValues[idx]
}

// Transition возвращает вес перехода между тегами.
func (d *Dictionaries) Transition(from, to string) float32 {
	return d.trans.Get(from, to)
}

// MatchList ищет совпадения для пакета текстов параллельно.
// Результат отсортирован по тексту; тексты без совпадений не попадают в результат.
func (d *Dictionaries) MatchList(texts []string) []TextMatches {
	const chunkSize = 1000 // Размер одного "пакета" для обработки воркером.
	numWorkers := runtime.NumCPU()

	// Канал для отправки "пакетов" (чанков) в воркеры.
	chunksCh := make(chan []string, numWorkers)
	// Канал для сбора результатов от воркеров.
	resultCh := make(chan []TextMatches, numWorkers)

	var wg sync.WaitGroup

	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			for chunk := range chunksCh {
				chunkResult := make([]TextMatches, 0, len(chunk))
				for _, text := range chunk {
					if matches := d.MorphMatches(text); matches != nil {
						chunkResult = append(chunkResult, TextMatches{Text: text, Matches: matches})
					}
				}
				resultCh <- chunkResult
			}
		}()
	}

	// Диспетчер нарезает тексты на чанки.
	go func() {
		for i := 0; i < len(texts); i += chunkSize {
			end := min(i+chunkSize, len(texts))
			chunksCh <- texts[i:end]
		}
		close(chunksCh)
	}()

	// Сборщик дожидается воркеров и закрывает канал результатов.
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	all := make([]TextMatches, 0, len(texts))
	for result := range resultCh {
		all = append(all, result...)
	}

	// Финальная сортировка для консистентного результата.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Text < all[j].Text
	})
	return all
}
