package model

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/steosofficial/hanalprep/sejong"
)

// ErrUnknownLabel - метки нет в алфавите.
var ErrUnknownLabel = errors.New("неизвестная метка")

// TransMatrix - плотная матрица весов переходов |L|x|L|.
// Строка - метка, в которую переходим, столбец - метка, из которой.
type TransMatrix struct {
	labels  []string
	index   map[string]int
	weights []float32
}

// NewTransMatrix создает нулевую матрицу для отсортированного алфавита меток.
func NewTransMatrix(labels []string) *TransMatrix {
	index := make(map[string]int, len(labels))
	for i, label := range labels {
		index[label] = i
	}
	return &TransMatrix{
		labels:  labels,
		index:   index,
		weights: make([]float32, len(labels)*len(labels)),
	}
}

// DefaultLabels - алфавит меток тэггера: теги Sejong по возрастанию.
func DefaultLabels() []string {
	return sejong.SortedTags()
}

// ReadTransitions читает блок TRANSITIONS дампа модели. Отсутствующие переходы равны 0.
func ReadTransitions(r io.Reader, labels []string) (*TransMatrix, error) {
	m := NewTransMatrix(labels)
	err := scanBlock(r, transitionsHeader, func(lineNum int, line string) error {
		from, to, weight, err := parseWeightLine(line)
		if err != nil {
			return fmt.Errorf("строка %d: %w: %q", lineNum, err, line)
		}
		w, err := strconv.ParseFloat(weight, 32)
		if err != nil {
			return fmt.Errorf("строка %d: ошибка разбора веса: %w", lineNum, err)
		}
		if err := m.Set(from, to, float32(w)); err != nil {
			return fmt.Errorf("строка %d: %w", lineNum, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ReadTransMatrix читает матрицу, записанную WriteTo.
func ReadTransMatrix(r io.Reader, labels []string) (*TransMatrix, error) {
	m := NewTransMatrix(labels)
	if err := binary.Read(r, binary.LittleEndian, m.weights); err != nil {
		return nil, fmt.Errorf("ошибка чтения матрицы %dx%d: %w", len(labels), len(labels), err)
	}
	var extra [1]byte
	if n, _ := r.Read(extra[:]); n > 0 {
		return nil, fmt.Errorf("лишние данные после матрицы %dx%d", len(labels), len(labels))
	}
	return m, nil
}

// Set задает вес перехода from -> to.
func (m *TransMatrix) Set(from, to string, w float32) error {
	fromIdx, ok := m.index[from]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLabel, from)
	}
	toIdx, ok := m.index[to]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLabel, to)
	}
	m.weights[toIdx*len(m.labels)+fromIdx] = w
	return nil
}

// Get возвращает вес перехода from -> to; для неизвестных меток 0.
func (m *TransMatrix) Get(from, to string) float32 {
	fromIdx, ok := m.index[from]
	if !ok {
		return 0
	}
	toIdx, ok := m.index[to]
	if !ok {
		return 0
	}
	return m.weights[toIdx*len(m.labels)+fromIdx]
}

// Labels - алфавит меток матрицы.
func (m *TransMatrix) Labels() []string {
	return m.labels
}

// WriteTo пишет матрицу подряд как float32 little endian: сначала все переходы
// в первую метку, затем во вторую и т.д. Без заголовка и выравнивания.
func (m *TransMatrix) WriteTo(w io.Writer) (int64, error) {
	if err := binary.Write(w, binary.LittleEndian, m.weights); err != nil {
		return 0, fmt.Errorf("ошибка записи матрицы переходов: %w", err)
	}
	return int64(len(m.weights) * 4), nil
}
