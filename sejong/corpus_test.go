package sejong

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

const writtenCorpus = `<text>
<p>
BTAA0001-00000012	프랑스의	프랑스/NNP + 의/JKG
BTAA0001-00000013	세계적인	세계/NNG + 적/XSN + 이/VCP + ᆫ/ETM
<date>
BTAA0001-00000014	먹었다.	먹/VV + 었/EP + 다/EF + ./SF
</p>
outside	밖/NNG
<head>
해	하/VV + 아/EC
</head>
</text>
`

func readAll(t *testing.T, r *Reader) []*Sentence {
	t.Helper()
	var sents []*Sentence
	for {
		s, err := r.Next()
		if errors.Is(err, io.EOF) {
			return sents
		}
		require.NoError(t, err)
		sents = append(sents, s)
	}
}

func TestReader_Written(t *testing.T) {
	sents := readAll(t, NewUTF8Reader(strings.NewReader(writtenCorpus), Written))
	require.Len(t, sents, 2)

	require.Len(t, sents[0].Words, 3)
	assert.Equal(t, "프랑스의", sents[0].Words[0].Raw)
	assert.Equal(t, []Morph{{"세계", "NNG"}, {"적", "XSN"}, {"이", "VCP"}, {"ᆫ", "ETM"}}, sents[0].Words[1].Morphs)
	assert.Equal(t, "먹었다.", sents[0].Words[2].Raw)

	require.Len(t, sents[1].Words, 1)
	assert.Equal(t, "해", sents[1].Words[0].Raw)
}

func TestReader_UTF16(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	encoded, err := enc.String(writtenCorpus)
	require.NoError(t, err)

	sents := readAll(t, NewReader(strings.NewReader(encoded), Written))
	require.Len(t, sents, 2)
	assert.Equal(t, "프랑스의", sents[0].Words[0].Raw)
}

func TestReader_Spoken(t *testing.T) {
	corpus := "<s n=\"1\">\n" +
		"<pause>\n" +
		"그래::<vocal desc=\"웃음\"/>\t그래/IC\n" +
		"<pause/>\t<pause/>/SW\n" +
		"했어\t하/VV+었/EP+어/EF\n" +
		"</s>\n"
	sents := readAll(t, NewUTF8Reader(strings.NewReader(corpus), Spoken))
	require.Len(t, sents, 1)
	require.Len(t, sents[0].Words, 3)
	assert.Equal(t, "그래", sents[0].Words[0].Raw)
	assert.Equal(t, "<pause/>", sents[0].Words[1].Raw)
	assert.Equal(t, []Morph{{"하", "VV"}, {"었", "EP"}, {"어", "EF"}}, sents[0].Words[2].Morphs)
}

func TestReader_ParseError(t *testing.T) {
	r := NewUTF8Reader(strings.NewReader("<p>\n깨진 줄\n</p>\n"), Written)
	r.Name = "broken.txt"
	_, err := r.Next()
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Line)
	assert.Contains(t, err.Error(), "broken.txt:2")
}

func TestReader_EmptyLex(t *testing.T) {
	r := NewUTF8Reader(strings.NewReader("<p>\n먹었다\t먹/VV + /EP + 다/EF\n</p>\n"), Written)
	_, err := r.Next()
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Line)
	assert.Contains(t, err.Error(), "/EP")
}

func TestParseDialect(t *testing.T) {
	d, err := ParseDialect("Spoken")
	require.NoError(t, err)
	assert.Equal(t, Spoken, d)
	d, err = ParseDialect("")
	require.NoError(t, err)
	assert.Equal(t, Written, d)
	_, err = ParseDialect("dialect")
	assert.Error(t, err)
	assert.Equal(t, "spoken", Spoken.String())
}
