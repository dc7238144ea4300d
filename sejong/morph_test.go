package sejong

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMorph(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    Morph
		wantErr bool
	}{
		{name: "Обычная морфема", input: "먹/VV", want: Morph{Lex: "먹", Tag: "VV"}},
		{name: "Слэш в лексеме", input: "//SP", want: Morph{Lex: "/", Tag: "SP"}},
		{name: "Скобки в лексеме", input: "(하)/VX", want: Morph{Lex: "(하)", Tag: "VX"}},
		{name: "Нет тега", input: "먹", wantErr: true},
		{name: "Пустой тег", input: "먹/", wantErr: true},
		{name: "Пустая лексема", input: "/VV", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseMorph(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.input, got.String())
		})
	}
}

func TestParseWord(t *testing.T) {
	w, err := ParseWord("먹었다\t먹/VV + 었/EP + 다/EF")
	require.NoError(t, err)
	assert.Equal(t, "먹었다", w.Raw)
	assert.Equal(t, []Morph{{"먹", "VV"}, {"었", "EP"}, {"다", "EF"}}, w.Morphs)
	assert.Equal(t, "먹었다\t먹/VV + 었/EP + 다/EF", w.String())
	assert.Equal(t, "먹었다", LexConcat(w.Morphs))

	_, err = ParseWord("먹었다")
	assert.Error(t, err)
	_, err = ParseWord("a\tb/NNG\tc/NNG")
	assert.Error(t, err)
}

func TestSentenceString(t *testing.T) {
	s := Sentence{Words: []Word{
		{Raw: "나는", Morphs: []Morph{{"나", "NP"}, {"는", "JX"}}},
		{Raw: "간다", Morphs: []Morph{{"가", "VV"}, {"ㄴ다", "EF"}}},
	}}
	assert.Equal(t, "나는 간다", s.RawString())
	assert.Equal(t, "# 나는 간다\n나는\t나/NP + 는/JX\n간다\t가/VV + ㄴ다/EF", s.String())
}

func TestTagSet(t *testing.T) {
	tags := SortedTags()
	require.Len(t, tags, 45)
	assert.Equal(t, "EC", tags[0])
	assert.Equal(t, "XSV", tags[len(tags)-1])

	idx, ok := TagIndex("EF")
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	_, ok = TagIndex("XX")
	assert.False(t, ok)

	assert.True(t, IsValidTag("VCP"))
	assert.False(t, IsValidTag("vcp"))
	assert.Equal(t, CategoryEnding, Classify("ETM"))
	assert.Equal(t, CategorySymbol, Classify("SF"))
	assert.Equal(t, CategoryUnknown, Classify("??"))

	// Изменение копии не должно портить общий порядок.
	tags[0] = "ZZ"
	assert.Equal(t, "EC", SortedTags()[0])
}

func TestHasTagPrefix(t *testing.T) {
	m := Morph{Lex: "하", Tag: "XSV"}
	assert.True(t, m.HasTagPrefix("XS"))
	assert.True(t, m.HasTagPrefix("X"))
	assert.False(t, m.HasTagPrefix("V"))
}
