package trie

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
)

// Расширения файлов словаря: поток ключей и поток значений.
const (
	KeyExt   = ".trie"
	ValueExt = ".val"
)

// WriteRecords пишет записи подряд, little endian, без заголовка.
func WriteRecords(w io.Writer, records []Record) error {
	return binary.Write(w, binary.LittleEndian, records)
}

// WriteFloatValues пишет значения как float32 little endian.
func WriteFloatValues(w io.Writer, values []float32) error {
	return binary.Write(w, binary.LittleEndian, values)
}

// WriteStringValues пишет каждое значение как uint32 длины в байтах и байты UTF-8.
func WriteStringValues(w io.Writer, values []string) error {
	var lenBuf [4]byte
	for _, v := range values {
		if uint64(len(v)) > math.MaxUint32 {
			return fmt.Errorf("значение длиной %d байт не помещается в формат", len(v))
		}
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(v)))
		if _, err := w.Write(lenBuf[:]); err != nil {
			return err
		}
		if _, err := io.WriteString(w, v); err != nil {
			return err
		}
	}
	return nil
}

// WriteFloats пишет словарь с вещественными значениями в <stem>.trie и <stem>.val.
func WriteFloats(stem string, c *Compiled[float32]) error {
	return writeDict(stem, c.Records, func(w io.Writer) error {
		return WriteFloatValues(w, c.Values)
	})
}

// WriteStrings пишет словарь со строковыми значениями в <stem>.trie и <stem>.val.
func WriteStrings(stem string, c *Compiled[string]) error {
	return writeDict(stem, c.Records, func(w io.Writer) error {
		return WriteStringValues(w, c.Values)
	})
}

// WriteAtomic пишет файл path через временный файл в том же каталоге: содержимое
// сбрасывается на диск и только затем переименовывается поверх path. При ошибке
// path остается прежним, временный файл удаляется.
func WriteAtomic(path string, write func(io.Writer) error) error {
	tmp, err := writeTemp(path, write)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// writeDict пишет оба потока во временные файлы рядом с целевыми и переименовывает
// их только после того, как оба записаны и сброшены на диск. Поток значений
// переименовывается первым, чтобы поток ключей не ссылался на незаписанные значения.
// Если не удалось переименовать поток ключей, прежний поток значений возвращается
// на место (или новый удаляется, если прежнего не было).
func writeDict(stem string, records []Record, writeValues func(io.Writer) error) (err error) {
	keyPath, valPath := stem+KeyExt, stem+ValueExt

	keyTmp, err := writeTemp(keyPath, func(w io.Writer) error {
		return WriteRecords(w, records)
	})
	if err != nil {
		return fmt.Errorf("ошибка записи потока ключей: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(keyTmp)
		}
	}()

	valTmp, err := writeTemp(valPath, writeValues)
	if err != nil {
		return fmt.Errorf("ошибка записи потока значений: %w", err)
	}
	backup, err := setAside(valPath)
	if err != nil {
		_ = os.Remove(valTmp)
		return fmt.Errorf("ошибка сохранения прежнего потока значений: %w", err)
	}
	if err = os.Rename(valTmp, valPath); err != nil {
		_ = os.Remove(valTmp)
		restore(backup, valPath)
		return fmt.Errorf("ошибка переименования потока значений: %w", err)
	}
	if err = os.Rename(keyTmp, keyPath); err != nil {
		restore(backup, valPath)
		return fmt.Errorf("ошибка переименования потока ключей: %w", err)
	}
	if backup != "" {
		_ = os.Remove(backup)
	}
	return nil
}

// setAside переименовывает существующий файл path во временное имя рядом с ним
// и возвращает это имя. Пустая строка - файла не было.
func setAside(path string) (string, error) {
	if _, err := os.Lstat(path); errors.Is(err, fs.ErrNotExist) {
		return "", nil
	} else if err != nil {
		return "", err
	}
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.bak")
	if err != nil {
		return "", err
	}
	name := f.Name()
	_ = f.Close()
	if err := os.Rename(path, name); err != nil {
		_ = os.Remove(name)
		return "", err
	}
	return name, nil
}

// restore возвращает отложенный setAside файл на место path. Без отложенного
// файла path удаляется: его там не было до записи.
func restore(backup, path string) {
	if backup == "" {
		_ = os.Remove(path)
		return
	}
	_ = os.Rename(backup, path)
}

// writeTemp пишет данные во временный файл в каталоге path и возвращает его имя.
func writeTemp(path string, write func(io.Writer) error) (name string, err error) {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	bw := bufio.NewWriter(f)
	if err = write(bw); err != nil {
		return "", err
	}
	if err = bw.Flush(); err != nil {
		return "", err
	}
	if err = f.Sync(); err != nil {
		return "", err
	}
	if err = f.Close(); err != nil {
		return "", err
	}
	return f.Name(), nil
}
