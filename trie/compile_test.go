package trie

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildIndex[V any](t testing.TB, keys []string, values []V) *Index[V] {
	t.Helper()
	ix := NewIndex[V]()
	for i, key := range keys {
		require.NoError(t, ix.Insert(key, values[i]))
	}
	return ix
}

func TestCompile_BreadthFirstLayout(t *testing.T) {
	ix := buildIndex(t, []string{"가", "가다", "간"}, []string{"v1", "v2", "v3"})
	c := Compile(ix)

	expected := []Record{
		{Symbol: 0, ValueIdx: -1, ChildStart: 1, ChildNum: 2},
		{Symbol: '가', ValueIdx: 0, ChildStart: 2, ChildNum: 1},
		{Symbol: '간', ValueIdx: 1, ChildStart: -1, ChildNum: 0},
		{Symbol: '다', ValueIdx: 2, ChildStart: -1, ChildNum: 0},
	}
	if diff := cmp.Diff(expected, c.Records); diff != "" {
		t.Errorf("Compile() records mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"v1", "v3", "v2"}, c.Values)
}

func TestCompile_ChildStartWithEarlierSiblings(t *testing.T) {
	// Уровень 1: a (2 ребенка), b (1 ребенок), c (без детей).
	ix := buildIndex(t, []string{"ax", "ay", "bz", "c"}, []int{1, 2, 3, 4})
	c := Compile(ix)

	symbols := make([]rune, len(c.Records))
	for i, rec := range c.Records {
		symbols[i] = rune(rec.Symbol)
	}
	assert.Equal(t, []rune{0, 'a', 'b', 'c', 'x', 'y', 'z'}, symbols)

	assert.Equal(t, int32(3), c.Records[1].ChildStart) // 1 + 3 = 4 (x)
	assert.Equal(t, int32(4), c.Records[2].ChildStart) // 2 + 4 = 6 (z)
	assert.Equal(t, int32(-1), c.Records[3].ChildStart)
}

func TestCompile_OffsetCorrectness(t *testing.T) {
	keys := randomKeys(500, 42)
	ix := buildIndex(t, keys, make([]int, len(keys)))
	c := Compile(ix)

	// Каждая запись, кроме корня, принадлежит ровно одному блоку детей.
	owner := make([]int, len(c.Records))
	for i := range owner {
		owner[i] = -1
	}
	for i, rec := range c.Records {
		if rec.ChildNum == 0 {
			assert.Equal(t, int32(-1), rec.ChildStart)
			continue
		}
		start := i + int(rec.ChildStart)
		block := c.Records[start : start+int(rec.ChildNum)]
		assert.True(t, sort.SliceIsSorted(block, func(a, b int) bool { return block[a].Symbol < block[b].Symbol }))
		for j := start; j < start+int(rec.ChildNum); j++ {
			require.Equal(t, -1, owner[j], "запись %d попала в два блока", j)
			owner[j] = i
		}
	}
	for i := 1; i < len(owner); i++ {
		assert.NotEqual(t, -1, owner[i], "запись %d без родителя", i)
	}
	assert.Equal(t, ix.Nodes(), len(c.Records))
}

func TestCompile_Deterministic(t *testing.T) {
	keys := randomKeys(300, 7)
	values := make([]string, len(keys))
	for i, key := range keys {
		values[i] = "val:" + key
	}

	first := Compile(buildIndex(t, keys, values))

	rng := rand.New(rand.NewSource(1))
	for round := 0; round < 5; round++ {
		perm := rng.Perm(len(keys))
		shuffledKeys := make([]string, len(keys))
		shuffledValues := make([]string, len(keys))
		for i, p := range perm {
			shuffledKeys[i] = keys[p]
			shuffledValues[i] = values[p]
		}
		again := Compile(buildIndex(t, shuffledKeys, shuffledValues))
		require.Empty(t, cmp.Diff(first, again), "раунд %d", round)
	}
}

func TestCompile_RoundTrip(t *testing.T) {
	keys := randomKeys(1000, 3)
	ix := NewIndex[int]()
	want := make(map[string]int)
	for i, key := range keys {
		require.NoError(t, ix.Insert(key, i))
		want[key] = i
	}
	// Повторная вставка перезаписывает значение и в плоском виде.
	require.NoError(t, ix.Insert(keys[0], -5))
	want[keys[0]] = -5

	c := Compile(ix)
	for key, v := range want {
		got, ok := c.Find(key)
		require.True(t, ok, key)
		require.Equal(t, v, got, key)
	}
	assert.Len(t, c.Values, len(want))

	_, ok := c.Find("없는키")
	assert.False(t, ok)
}

func TestCompile_Empty(t *testing.T) {
	c := Compile(NewIndex[float32]())
	assert.Equal(t, []Record{{Symbol: 0, ValueIdx: -1, ChildStart: -1}}, c.Records)
	assert.Empty(t, c.Values)
	_, ok := c.Find("가")
	assert.False(t, ok)
}

func TestCommonPrefixMatches(t *testing.T) {
	ix := buildIndex(t, []string{"가", "가다", "가다가", "나"}, []int{0, 1, 2, 3})
	c := Compile(ix)

	matches := commonPrefixMatches(c.Records, "가다나")
	require.Len(t, matches, 2)
	assert.Equal(t, "가", "가다나"[:matches[0].Len])
	assert.Equal(t, "가다", "가다나"[:matches[1].Len])
	assert.Equal(t, 0, c.Values[matches[0].ValueIdx])
	assert.Equal(t, 1, c.Values[matches[1].ValueIdx])

	assert.Empty(t, commonPrefixMatches(c.Records, "다"))
	assert.Empty(t, commonPrefixMatches(c.Records, ""))
}

// randomKeys генерирует ключи из небольшого алфавита, чтобы префиксы пересекались.
func randomKeys(n int, seed int64) []string {
	alphabet := []rune("가나다라마바사ab")
	rng := rand.New(rand.NewSource(seed))
	seen := make(map[string]bool)
	keys := make([]string, 0, n)
	for len(keys) < n {
		length := 1 + rng.Intn(6)
		runes := make([]rune, length)
		for i := range runes {
			runes[i] = alphabet[rng.Intn(len(alphabet))]
		}
		key := string(runes)
		if seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	return keys
}

func BenchmarkCompile(b *testing.B) {
	keys := randomKeys(20000, 1)
	ix := buildIndex(b, keys, make([]int, len(keys)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Compile(ix)
	}
}

func BenchmarkCompiledFind(b *testing.B) {
	keys := randomKeys(20000, 1)
	c := Compile(buildIndex(b, keys, make([]int, len(keys))))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Find(keys[i%len(keys)])
	}
}

func ExampleCompile() {
	ix := NewIndex[string]()
	_ = ix.Insert("가", "v1")
	_ = ix.Insert("가다", "v2")
	_ = ix.Insert("간", "v3")
	for _, rec := range Compile(ix).Records {
		fmt.Printf("%q %d %d %d\n", rune(rec.Symbol), rec.ValueIdx, rec.ChildStart, rec.ChildNum)
	}
	// Output:
	// '\x00' -1 1 2
	// '가' 0 2 1
	// '간' 1 -1 0
	// '다' 2 -1 0
}
