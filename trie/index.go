// Пакет trie строит префиксное дерево в памяти, компилирует его в плоский
// массив записей фиксированной ширины и читает такие массивы через mmap.
//
// Плоский формат не содержит указателей: дочерние записи узла лежат непрерывным
// блоком, смещение до которого хранится в самой записи. Это позволяет
// отображать словарь в память без разбора и копирования.
package trie

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrEmptyKey - пустой ключ вставить нельзя: корню значение не назначается.
var ErrEmptyKey = errors.New("пустой ключ")

// ErrTooLarge - число узлов не помещается в int32 плоского формата.
var ErrTooLarge = errors.New("слишком много узлов для плоского формата")

// DuplicateKeyError возвращается в строгом режиме при повторной вставке ключа.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("ключ %q уже есть в дереве", e.Key)
}

// node - узел дерева. Дети отсортированы по символу.
type node[V any] struct {
	symbol   rune
	children []int32
	value    V
	hasValue bool
}

// Index - префиксное дерево в памяти. Узлы лежат в одном срезе и
// адресуются индексами, корень - узел 0. Не потокобезопасно.
type Index[V any] struct {
	// Strict запрещает повторную вставку ключа. По умолчанию побеждает последняя вставка.
	Strict bool

	nodes []node[V]
	size  int
}

// NewIndex создает пустое дерево.
func NewIndex[V any]() *Index[V] {
	return &Index[V]{nodes: make([]node[V], 1)}
}

// Insert добавляет ключ или перезаписывает его значение.
func (ix *Index[V]) Insert(key string, v V) error {
	if key == "" {
		return ErrEmptyKey
	}
	if ix.Strict {
		if _, ok := ix.Find(key); ok {
			return &DuplicateKeyError{Key: key}
		}
	}

	cur := int32(0)
	for _, r := range key {
		child, ok := ix.child(cur, r)
		if !ok {
			var err error
			if child, err = ix.addChild(cur, r); err != nil {
				return err
			}
		}
		cur = child
	}

	n := &ix.nodes[cur]
	if !n.hasValue {
		ix.size++
	}
	n.value = v
	n.hasValue = true
	return nil
}

// Find возвращает значение ключа. Префикс без собственного значения не находится.
func (ix *Index[V]) Find(key string) (V, bool) {
	var zero V
	if key == "" {
		return zero, false
	}
	cur := int32(0)
	for _, r := range key {
		child, ok := ix.child(cur, r)
		if !ok {
			return zero, false
		}
		cur = child
	}
	n := &ix.nodes[cur]
	if !n.hasValue {
		return zero, false
	}
	return n.value, true
}

// Len - число ключей.
func (ix *Index[V]) Len() int {
	return ix.size
}

// Nodes - число узлов, включая корень.
func (ix *Index[V]) Nodes() int {
	return len(ix.nodes)
}

// child ищет ребенка бинарным поиском по отсортированным детям.
func (ix *Index[V]) child(parent int32, r rune) (int32, bool) {
	children := ix.nodes[parent].children
	i := ix.searchChild(children, r)
	if i < len(children) && ix.nodes[children[i]].symbol == r {
		return children[i], true
	}
	return 0, false
}

// addChild создает ребенка, сохраняя порядок детей по символу.
func (ix *Index[V]) addChild(parent int32, r rune) (int32, error) {
	if len(ix.nodes) >= math.MaxInt32 {
		return 0, ErrTooLarge
	}
	id := int32(len(ix.nodes))
	ix.nodes = append(ix.nodes, node[V]{symbol: r})

	children := ix.nodes[parent].children
	i := ix.searchChild(children, r)
	children = append(children, 0)
	copy(children[i+1:], children[i:])
	children[i] = id
	ix.nodes[parent].children = children
	return id, nil
}

func (ix *Index[V]) searchChild(children []int32, r rune) int {
	return sort.Search(len(children), func(i int) bool { return ix.nodes[children[i]].symbol >= r })
}
