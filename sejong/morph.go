// Пакет sejong описывает морфемы, словоформы (어절) и предложения
// размеченного корпуса Sejong, а также читает сам корпус.
package sejong

import (
	"fmt"
	"strings"
)

// --- СТРУКТУРЫ ДАННЫХ ---

// Morph - морфема: лексическая форма и тег.
type Morph struct {
	Lex string `json:"lex"`
	Tag string `json:"tag"`
}

// Word - словоформа (어절): исходная запись и ее разбор на морфемы.
type Word struct {
	Raw    string  `json:"raw"`
	Morphs []Morph `json:"morphs"`
}

// Sentence - предложение корпуса.
type Sentence struct {
	Words []Word `json:"words"`
}

// MorphDelim - разделитель морфем в текстовой записи разбора.
const MorphDelim = " + "

func (m Morph) String() string {
	return m.Lex + "/" + m.Tag
}

// ParseMorph разбирает запись "лексема/ТЕГ". Разделителем считается последний '/',
// поэтому "//SP" - это морфема "/" с тегом SP.
func ParseMorph(s string) (Morph, error) {
	idx := strings.LastIndexByte(s, '/')
	if idx <= 0 || idx == len(s)-1 {
		return Morph{}, fmt.Errorf("некорректная морфема: %q", s)
	}
	return Morph{Lex: s[:idx], Tag: s[idx+1:]}, nil
}

// MustParseMorph - как ParseMorph, но паникует при ошибке. Для таблиц и тестов.
func MustParseMorph(s string) Morph {
	m, err := ParseMorph(s)
	if err != nil {
		panic(err)
	}
	return m
}

// ParseMorphs разбирает цепочку "м1/Т1 + м2/Т2".
func ParseMorphs(s string) ([]Morph, error) {
	parts := strings.Split(s, MorphDelim)
	morphs := make([]Morph, 0, len(parts))
	for _, part := range parts {
		m, err := ParseMorph(part)
		if err != nil {
			return nil, err
		}
		morphs = append(morphs, m)
	}
	return morphs, nil
}

// JoinMorphs собирает запись "м1/Т1 + м2/Т2".
func JoinMorphs(morphs []Morph) string {
	strs := make([]string, len(morphs))
	for i, m := range morphs {
		strs[i] = m.String()
	}
	return strings.Join(strs, MorphDelim)
}

// LexConcat склеивает лексические формы морфем.
func LexConcat(morphs []Morph) string {
	var sb strings.Builder
	for _, m := range morphs {
		sb.WriteString(m.Lex)
	}
	return sb.String()
}

// ParseWord разбирает строку "исходник\tм1/Т1 + м2/Т2".
func ParseWord(line string) (Word, error) {
	raw, analysis, ok := strings.Cut(line, "\t")
	if !ok || strings.Contains(analysis, "\t") {
		return Word{}, fmt.Errorf("ожидается две колонки: %q", line)
	}
	morphs, err := ParseMorphs(analysis)
	if err != nil {
		return Word{}, err
	}
	return Word{Raw: raw, Morphs: morphs}, nil
}

func (w Word) String() string {
	return w.Raw + "\t" + JoinMorphs(w.Morphs)
}

// RawString возвращает предложение в исходной записи через пробел.
func (s Sentence) RawString() string {
	raws := make([]string, len(s.Words))
	for i, w := range s.Words {
		raws[i] = w.Raw
	}
	return strings.Join(raws, " ")
}

func (s Sentence) String() string {
	lines := make([]string, 0, len(s.Words)+1)
	lines = append(lines, "# "+s.RawString())
	for _, w := range s.Words {
		lines = append(lines, w.String())
	}
	return strings.Join(lines, "\n")
}
