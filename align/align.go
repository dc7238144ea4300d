// Пакет align выравнивает исходную запись словоформы (어절) с ее разбором на морфемы:
// запись делится на подстроки, и каждой подстроке сопоставляется непрерывная
// цепочка морфем. Из-за стяжений (하+아 -> 해) побуквенного совпадения нет,
// поэтому сравниваются разложения на чамо, а остальное решает таблица исключений.
package align

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/steosofficial/hanalprep/hangul"
	"github.com/steosofficial/hanalprep/sejong"
)

// DefaultSimilarityThreshold - минимальное сходство остатка записи и морфем,
// при котором остаток принимается одной парой (граница включается).
const DefaultSimilarityThreshold = 0.5

// --- СТРУКТУРЫ ДАННЫХ ---

// Pair - подстрока записи и соответствующая ей цепочка морфем.
type Pair struct {
	Surface string         `json:"surface"`
	Morphs  []sejong.Morph `json:"morphs"`
}

func (p Pair) String() string {
	return p.Surface + "\t" + sejong.JoinMorphs(p.Morphs)
}

// Aligner - выравниватель. Не имеет изменяемого состояния.
type Aligner struct {
	rules     *RuleSet
	threshold float64
	logger    *zap.Logger

	bothChain      []strategy
	surfaceChain   []strategy
	morphOnlyChain []strategy
}

// Option настраивает Aligner.
type Option func(*Aligner)

// WithRules задает таблицу исключений вместо базовой.
func WithRules(rs *RuleSet) Option {
	return func(a *Aligner) { a.rules = rs }
}

// WithSimilarityThreshold задает порог сходства.
func WithSimilarityThreshold(threshold float64) Option {
	return func(a *Aligner) { a.threshold = threshold }
}

// WithLogger задает журнал для диагностики невыровненных словоформ.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Aligner) { a.logger = logger }
}

// NewAligner создает выравниватель.
func NewAligner(opts ...Option) *Aligner {
	a := &Aligner{threshold: DefaultSimilarityThreshold, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	if a.rules == nil {
		a.rules = DefaultRules()
	}
	a.bothChain = a.buildBothChain()
	a.surfaceChain = surfaceOnlyChain()
	a.morphOnlyChain = a.buildMorphOnlyChain()
	return a
}

// --- ЛОГИКА ВЫРАВНИВАНИЯ ---

// Align выравнивает одну словоформу.
// Ошибка (*Error, errors.Is(err, ErrNotAligned)) означает, что словоформу выровнять нельзя.
func (a *Aligner) Align(w sejong.Word) ([]Pair, error) {
	surface := []rune(w.Raw)
	morphs := w.Morphs

	forward, surface, morphs := forwardSearch(surface, morphs)
	backward, surface, morphs := backwardSearch(surface, morphs)

	if len(surface) == 0 && len(morphs) == 0 {
		return concatPairs(forward, nil, backward), nil
	}

	r := &residual{
		word:     w,
		forward:  forward,
		surface:  string(surface),
		morphs:   morphs,
		backward: backward,
	}
	res, ok := a.resolve(r)
	if !ok {
		err := &Error{
			Word:     w,
			Forward:  forward,
			Surface:  r.surface,
			Morphs:   cloneMorphs(morphs),
			Backward: backward,
			Reason:   a.failureReason(r),
		}
		a.logNotAligned(err)
		return nil, err
	}
	return concatPairs(res.forward, res.sandwich, res.backward), nil
}

// AlignSentence выравнивает все словоформы предложения. Первая же ошибка
// отбраковывает предложение целиком: частичный результат не возвращается.
func (a *Aligner) AlignSentence(s sejong.Sentence) ([][]Pair, error) {
	result := make([][]Pair, 0, len(s.Words))
	for _, w := range s.Words {
		pairs, err := a.Align(w)
		if err != nil {
			return nil, err
		}
		result = append(result, pairs)
	}
	return result, nil
}

// forwardSearch отщепляет пары с начала записи, пока это удается.
func forwardSearch(surface []rune, morphs []sejong.Morph) ([]Pair, []rune, []sejong.Morph) {
	var pairs []Pair
	for len(surface) > 0 && len(morphs) > 0 {
		wordLen, morphNum, ok := matchPrefix(surface, morphs)
		if !ok {
			break
		}
		pairs = append(pairs, Pair{Surface: string(surface[:wordLen]), Morphs: cloneMorphs(morphs[:morphNum])})
		surface, morphs = surface[wordLen:], morphs[morphNum:]
	}
	return pairs, surface, morphs
}

// backwardSearch отщепляет пары с конца записи; пары идут в порядке записи.
func backwardSearch(surface []rune, morphs []sejong.Morph) ([]Pair, []rune, []sejong.Morph) {
	var reversed []Pair
	for len(surface) > 0 && len(morphs) > 0 {
		wordLen, morphNum, ok := matchSuffix(surface, morphs)
		if !ok {
			break
		}
		reversed = append(reversed, Pair{
			Surface: string(surface[len(surface)-wordLen:]),
			Morphs:  cloneMorphs(morphs[len(morphs)-morphNum:]),
		})
		surface, morphs = surface[:len(surface)-wordLen], morphs[:len(morphs)-morphNum]
	}
	pairs := make([]Pair, len(reversed))
	for i, p := range reversed {
		pairs[len(reversed)-1-i] = p
	}
	return pairs, surface, morphs
}

// matchPrefix ищет кратчайшую цепочку морфем с начала, разложение которой
// совпадает с разложением некоторого префикса записи.
// Возвращает длину префикса в символах и число морфем.
func matchPrefix(surface []rune, morphs []sejong.Morph) (int, int, bool) {
	lex := []rune(morphs[0].Lex)
	if hasRunePrefix(surface, lex) {
		return len(lex), 1, true
	}
	if len(morphs) == 1 {
		// Осталась одна морфема: вся запись ей, если разложения совпали (стяжение многих в одну).
		if hangul.Decompose(string(surface)) == hangul.Decompose(morphs[0].Lex) {
			return len(surface), 1, true
		}
		return 0, 0, false
	}

	prefixes := decomposedPrefixes(surface)
	var concat strings.Builder
	concat.WriteString(morphs[0].Lex)
	for i := 2; i <= len(morphs); i++ {
		concat.WriteString(morphs[i-1].Lex)
		sub := concat.String()
		subDec := hangul.Decompose(sub)
		limit := min(utf8.RuneCountInString(sub)-1, len(surface))
		for k := 1; k <= limit; k++ {
			if prefixes[k] == subDec {
				return k, i, true
			}
		}
	}
	return 0, 0, false
}

// matchSuffix - зеркальный вариант matchPrefix для конца записи.
func matchSuffix(surface []rune, morphs []sejong.Morph) (int, int, bool) {
	lex := []rune(morphs[len(morphs)-1].Lex)
	if hasRuneSuffix(surface, lex) {
		return len(lex), 1, true
	}
	if len(morphs) == 1 {
		if hangul.Decompose(string(surface)) == hangul.Decompose(morphs[0].Lex) {
			return len(surface), 1, true
		}
		return 0, 0, false
	}

	suffixes := decomposedSuffixes(surface)
	for i := 2; i <= len(morphs); i++ {
		sub := sejong.LexConcat(morphs[len(morphs)-i:])
		subDec := hangul.Decompose(sub)
		limit := min(utf8.RuneCountInString(sub)-1, len(surface))
		for k := 1; k <= limit; k++ {
			if suffixes[k] == subDec {
				return k, i, true
			}
		}
	}
	return 0, 0, false
}

// decomposedPrefixes[k] == hangul.Decompose(string(surface[:k])).
func decomposedPrefixes(surface []rune) []string {
	result := make([]string, len(surface)+1)
	for k, r := range surface {
		result[k+1] = result[k] + hangul.DecomposeRune(r)
	}
	return result
}

// decomposedSuffixes[k] == hangul.Decompose(string(surface[len(surface)-k:])).
func decomposedSuffixes(surface []rune) []string {
	result := make([]string, len(surface)+1)
	for k := 1; k <= len(surface); k++ {
		result[k] = hangul.DecomposeRune(surface[len(surface)-k]) + result[k-1]
	}
	return result
}

func hasRunePrefix(s, prefix []rune) bool {
	if len(prefix) > len(s) {
		return false
	}
	for i, r := range prefix {
		if s[i] != r {
			return false
		}
	}
	return true
}

func hasRuneSuffix(s, suffix []rune) bool {
	if len(suffix) > len(s) {
		return false
	}
	offset := len(s) - len(suffix)
	for i, r := range suffix {
		if s[offset+i] != r {
			return false
		}
	}
	return true
}

// --- ВСПОМОГАТЕЛЬНЫЕ ФУНКЦИИ ---

func (a *Aligner) logNotAligned(err *Error) {
	fields := []zap.Field{
		zap.String("word", err.Word.Raw),
		zap.String("morphs", sejong.JoinMorphs(err.Word.Morphs)),
		zap.Strings("forward", pairStrings(err.Forward)),
		zap.String("sandwich_word", err.Surface),
		zap.String("sandwich_morphs", sejong.JoinMorphs(err.Morphs)),
		zap.Strings("backward", pairStrings(err.Backward)),
		zap.String("reason", err.Reason),
	}
	a.logger.Error("словоформа не выровнена", fields...)
}

// FormatPairs печатает пары построчно: "запись\tм1/Т1 + м2/Т2".
func FormatPairs(w io.Writer, pairs []Pair) error {
	for _, p := range pairs {
		if _, err := fmt.Fprintln(w, p.String()); err != nil {
			return err
		}
	}
	return nil
}

func pairStrings(pairs []Pair) []string {
	strs := make([]string, len(pairs))
	for i, p := range pairs {
		strs[i] = "[" + p.Surface + "] " + sejong.JoinMorphs(p.Morphs)
	}
	return strs
}

func cloneMorphs(morphs []sejong.Morph) []sejong.Morph {
	if len(morphs) == 0 {
		return nil
	}
	return append([]sejong.Morph(nil), morphs...)
}

func clonePairs(pairs []Pair) []Pair {
	cloned := make([]Pair, len(pairs))
	for i, p := range pairs {
		cloned[i] = Pair{Surface: p.Surface, Morphs: cloneMorphs(p.Morphs)}
	}
	return cloned
}

func concatPairs(parts ...[]Pair) []Pair {
	var n int
	for _, part := range parts {
		n += len(part)
	}
	result := make([]Pair, 0, n)
	for _, part := range parts {
		result = append(result, part...)
	}
	return result
}
