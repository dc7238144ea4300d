package trie

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"unsafe"

	"github.com/edsrzf/mmap-go"
)

// ErrCorrupt - файл словаря не соответствует формату.
var ErrCorrupt = errors.New("поврежденный файл словаря")

// Dict - словарь только для чтения поверх плоских записей.
// Записи либо отображены в память (OpenDict), либо лежат в куче (NewDict).
// Поиск безопасен для одновременного использования из нескольких горутин.
type Dict struct {
	records []Record
	values  int

	// Ссылка на mmap-объект, чтобы память оставалась доступной до Close.
	mmapFile mmap.MMap
}

// OpenDict отображает поток ключей в память без копирования.
func OpenDict(path string) (*Dict, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения атрибутов файла: %w", err)
	}
	if info.Size() == 0 || info.Size()%RecordSize != 0 {
		return nil, fmt.Errorf("%s: размер %d не кратен %d: %w", path, info.Size(), RecordSize, ErrCorrupt)
	}

	mmapFile, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("ошибка mmap.Map: %w", err)
	}

	records := bytesToSlice[Record](mmapFile)
	d, err := newDict(records)
	if err != nil {
		_ = mmapFile.Unmap()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	d.mmapFile = mmapFile
	return d, nil
}

// NewDict создает словарь поверх записей в памяти, например из Compile.
func NewDict(records []Record) (*Dict, error) {
	return newDict(records)
}

func newDict(records []Record) (*Dict, error) {
	values, err := validateRecords(records)
	if err != nil {
		return nil, err
	}
	return &Dict{records: records, values: values}, nil
}

// validateRecords проверяет, что блоки детей не выходят за границы,
// и возвращает число значений.
func validateRecords(records []Record) (int, error) {
	if len(records) == 0 {
		return 0, fmt.Errorf("нет корневой записи: %w", ErrCorrupt)
	}
	values := 0
	for i, rec := range records {
		if rec.ValueIdx >= 0 {
			values = max(values, int(rec.ValueIdx)+1)
		}
		if rec.ChildNum == 0 {
			continue
		}
		start := i + int(rec.ChildStart)
		if rec.ChildNum < 0 || rec.ChildStart <= 0 || start+int(rec.ChildNum) > len(records) {
			return 0, fmt.Errorf("запись %d: блок детей [%d, +%d) вне файла: %w", i, start, rec.ChildNum, ErrCorrupt)
		}
	}
	return values, nil
}

// Find возвращает индекс значения ключа.
func (d *Dict) Find(key string) (int, bool) {
	return lookup(d.records, key)
}

// CommonPrefixMatches возвращает все префиксы текста, которые есть в словаре,
// от коротких к длинным.
func (d *Dict) CommonPrefixMatches(text string) []Match {
	return commonPrefixMatches(d.records, text)
}

// Len - число записей.
func (d *Dict) Len() int {
	return len(d.records)
}

// ValueCount - число значений, на которые ссылаются записи.
func (d *Dict) ValueCount() int {
	return d.values
}

// Close освобождает отображенную память. После Close словарь использовать нельзя.
func (d *Dict) Close() error {
	d.records = nil
	if d.mmapFile == nil {
		return nil
	}
	err := d.mmapFile.Unmap()
	d.mmapFile = nil
	return err
}

// FindList ищет много ключей параллельно. Результат выровнен по входу:
// для ненайденного ключа -1.
func (d *Dict) FindList(keys []string) []int {
	const chunkSize = 1000
	numWorkers := runtime.NumCPU()

	type chunk struct {
		offset int
		keys   []string
	}

	result := make([]int, len(keys))
	chunksCh := make(chan chunk, numWorkers)

	var wg sync.WaitGroup

	// Воркеры пишут в непересекающиеся участки result, поэтому блокировка не нужна.
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			for c := range chunksCh {
				for j, key := range c.keys {
					idx, ok := d.Find(key)
					if !ok {
						idx = -1
					}
					result[c.offset+j] = idx
				}
			}
		}()
	}

	for i := 0; i < len(keys); i += chunkSize {
		end := min(i+chunkSize, len(keys))
		chunksCh <- chunk{offset: i, keys: keys[i:end]}
	}
	close(chunksCh)
	wg.Wait()

	return result
}

// --- ПОТОКИ ЗНАЧЕНИЙ ---

// OpenFloatValues читает поток значений float32.
func OpenFloatValues(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения значений: %w", err)
	}
	return ReadFloatValues(data)
}

// ReadFloatValues разбирает поток значений float32.
func ReadFloatValues(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("размер %d не кратен 4: %w", len(data), ErrCorrupt)
	}
	values := make([]float32, len(data)/4)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, values); err != nil {
		return nil, fmt.Errorf("ошибка чтения значений: %w", err)
	}
	return values, nil
}

// OpenStringValues читает поток строковых значений.
func OpenStringValues(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения значений: %w", err)
	}
	return ReadStringValues(data)
}

// ReadStringValues разбирает поток "uint32 длины + байты".
func ReadStringValues(data []byte) ([]string, error) {
	var values []string
	for pos := 0; pos < len(data); {
		if len(data)-pos < 4 {
			return nil, fmt.Errorf("значение %d: обрезана длина: %w", len(values), io.ErrUnexpectedEOF)
		}
		n := int(binary.LittleEndian.Uint32(data[pos:]))
		pos += 4
		if n > len(data)-pos {
			return nil, fmt.Errorf("значение %d: длина %d за концом файла: %w", len(values), n, io.ErrUnexpectedEOF)
		}
		values = append(values, string(data[pos:pos+n]))
		pos += n
	}
	return values, nil
}

// bytesToSlice создает срез, указывающий на область байт, без копирования.
// Порядок байт записей совпадает с порядком байт платформы (little endian).
func bytesToSlice[T any](b []byte) []T {
	if len(b) == 0 {
		return nil
	}
	var t T
	size := int(unsafe.Sizeof(t))
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), len(b)/size)
}
