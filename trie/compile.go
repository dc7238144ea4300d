package trie

import (
	"sort"
	"unicode/utf8"
)

// RecordSize - размер записи плоского формата в байтах.
const RecordSize = 16

// Record - узел плоского дерева. На диске: четыре int32 little endian.
type Record struct {
	Symbol     int32 // Символ (rune) ребра, ведущего в узел. У корня 0.
	ValueIdx   int32 // Индекс значения или -1.
	ChildStart int32 // Смещение (в записях) от этой записи до первого ребенка или -1.
	ChildNum   int32 // Число детей.
}

// Compiled - дерево в плоском виде: записи в порядке обхода в ширину и значения
// в порядке первого появления при этом обходе.
type Compiled[V any] struct {
	Records []Record
	Values  []V
}

// Compile раскладывает дерево в ширину: корень, затем уровень 1, уровень 2 и т.д.
// Внутри уровня дети каждого узла идут по возрастанию символа сразу после детей
// предыдущих узлов уровня. Результат зависит только от набора ключей и значений,
// но не от порядка вставки.
func Compile[V any](ix *Index[V]) *Compiled[V] {
	c := &Compiled[V]{
		Records: make([]Record, 0, len(ix.nodes)),
		Values:  make([]V, 0, ix.size),
	}

	level := []int32{0}
	for len(level) > 0 {
		var next []int32
		// Дети узла j лежат после оставшихся узлов уровня (включая сам j)
		// и после детей узлов уровня, стоящих раньше j.
		earlier := 0
		for j, id := range level {
			n := &ix.nodes[id]
			rec := Record{Symbol: int32(n.symbol), ValueIdx: -1, ChildStart: -1}
			if n.hasValue {
				rec.ValueIdx = int32(len(c.Values))
				c.Values = append(c.Values, n.value)
			}
			if len(n.children) > 0 {
				rec.ChildStart = int32(len(level) - j + earlier)
				rec.ChildNum = int32(len(n.children))
				earlier += len(n.children)
				next = append(next, n.children...)
			}
			c.Records = append(c.Records, rec)
		}
		level = next
	}
	return c
}

// Find ищет ключ в плоском представлении.
func (c *Compiled[V]) Find(key string) (V, bool) {
	var zero V
	idx, ok := lookup(c.Records, key)
	if !ok {
		return zero, false
	}
	return c.Values[idx], true
}

// --- ПОИСК ПО ПЛОСКОМУ ФОРМАТУ ---

// lookup возвращает индекс значения ключа.
func lookup(records []Record, key string) (int, bool) {
	if len(records) == 0 || key == "" {
		return -1, false
	}
	cur := 0
	for _, r := range key {
		child, ok := childOf(records, cur, r)
		if !ok {
			return -1, false
		}
		cur = child
	}
	v := records[cur].ValueIdx
	return int(v), v >= 0
}

// childOf ищет ребенка бинарным поиском внутри блока детей записи.
func childOf(records []Record, idx int, r rune) (int, bool) {
	rec := records[idx]
	if rec.ChildNum == 0 {
		return 0, false
	}
	start := idx + int(rec.ChildStart)
	block := records[start : start+int(rec.ChildNum)]
	i := sort.Search(len(block), func(i int) bool { return block[i].Symbol >= int32(r) })
	if i < len(block) && block[i].Symbol == int32(r) {
		return start + i, true
	}
	return 0, false
}

// Match - префикс текста, найденный в словаре.
type Match struct {
	Len      int // Длина префикса в байтах.
	ValueIdx int
}

// commonPrefixMatches находит все префиксы текста, являющиеся ключами, от коротких к длинным.
func commonPrefixMatches(records []Record, text string) []Match {
	if len(records) == 0 {
		return nil
	}
	var matches []Match
	cur := 0
	for pos := 0; pos < len(text); {
		r, size := utf8.DecodeRuneInString(text[pos:])
		child, ok := childOf(records, cur, r)
		if !ok {
			break
		}
		cur = child
		pos += size
		if v := records[cur].ValueIdx; v >= 0 {
			matches = append(matches, Match{Len: pos, ValueIdx: int(v)})
		}
	}
	return matches
}
