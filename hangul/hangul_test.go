package hangul

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecompose(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		expected string
	}{
		{name: "Пустая строка", text: "", expected: ""},
		{name: "Слог без батчима (가)", text: "가", expected: "\u1100\u1161"},
		{name: "Слог с батчимом (간)", text: "간", expected: "\u1100\u1161\u1102"},
		{name: "Сдвоенный батчим остается (앉)", text: "앉", expected: "\u110b\u1161\u11ac"},
		{name: "Латиница и знаки без изменений", text: "a.~", expected: "a.~"},
		{name: "Отдельная конечная jamo (ᆯ)", text: "\u11af", expected: "\u1105"},
		{name: "Jamo совместимости (ㄹ)", text: "\u3139", expected: "\u1105"},
		{name: "Смешанный текст", text: "X간", expected: "X\u1100\u1161\u1102"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Decompose(tc.text))
		})
	}
}

func TestDecompose_Resyllabification(t *testing.T) {
	// Батчим, записанный отдельной морфемой, совпадает с батчимом внутри слога.
	assert.Equal(t, Decompose("간"), Decompose("가\u11ab"))
	assert.Equal(t, Decompose("갈"), Decompose("가\u3139"))
	assert.Equal(t, Decompose("먹어"), Decompose("머")+Decompose("\u1100")+Decompose("어"))
	assert.NotEqual(t, Decompose("해"), Decompose("하아"))
}

func TestDecompose_Concatenation(t *testing.T) {
	words := []string{"먹었다", "해", "하아", "ᆯ까", "뭘로", "a1"}
	for _, a := range words {
		for _, b := range words {
			require.Equal(t, Decompose(a)+Decompose(b), Decompose(a+b), "%q + %q", a, b)
		}
	}
}

func TestDecomposeRune(t *testing.T) {
	var joined string
	for _, r := range "했다" {
		joined += DecomposeRune(r)
	}
	assert.Equal(t, Decompose("했다"), joined)
}

func TestIsHangul(t *testing.T) {
	assert.True(t, IsHangul('가'))
	assert.True(t, IsHangul('ᆯ'))
	assert.True(t, IsHangul('ㄹ'))
	assert.False(t, IsHangul('a'))
	assert.False(t, IsHangul('.'))
	assert.True(t, IsSyllable('힣'))
	assert.False(t, IsSyllable('ㄹ'))
}

func TestSimilarity(t *testing.T) {
	testCases := []struct {
		name     string
		lhs, rhs string
		expected float64
	}{
		{name: "Одинаковые строки", lhs: "해", rhs: "해", expected: 1.0},
		{name: "Обе пустые", lhs: "", rhs: "", expected: 1.0},
		{name: "Ровно половина", lhs: "가", rhs: "가나", expected: 0.5},
		{name: "Ниже порога", lhs: "가", rhs: "나의", expected: 0.25},
		{name: "Одна пустая", lhs: "", rhs: "가", expected: 0.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, Similarity(tc.lhs, tc.rhs), 1e-9)
		})
	}
}

func TestSimilarity_Bounds(t *testing.T) {
	words := []string{"", "해", "하아", "먹었다", "abc", "ᆫ"}
	for _, a := range words {
		for _, b := range words {
			sim := Similarity(a, b)
			require.GreaterOrEqual(t, sim, 0.0)
			require.LessOrEqual(t, sim, 1.0)
			require.Equal(t, sim, Similarity(b, a))
		}
	}
}
