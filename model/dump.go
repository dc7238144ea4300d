// Пакет model готовит данные для тэггера из обученной модели и выровненного
// корпуса: плотную матрицу переходов между тегами, словарь весов признаков
// состояний и словарь разборов слогов.
package model

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Заголовки блоков в текстовом дампе модели crfsuite.
const (
	transitionsHeader   = "TRANSITIONS = {"
	stateFeaturesHeader = "STATE_FEATURES = {"
	blockEnd            = "}"
)

// progressEvery - как часто сообщать в журнал о ходе чтения больших файлов.
const progressEvery = 1_000_000

// scanBlock вызывает fn для каждой строки блока с заголовком header.
// Строки до заголовка пропускаются, чтение останавливается на закрывающей скобке.
// Если блока нет, fn не вызывается ни разу.
func scanBlock(r io.Reader, header string, fn func(lineNum int, line string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	lineNum := 0
	inBlock := false
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if !inBlock {
			inBlock = strings.HasPrefix(line, header)
			continue
		}
		if line == blockEnd {
			return nil
		}
		if line == "" {
			continue
		}
		if err := fn(lineNum, line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("ошибка чтения дампа модели: %w", err)
	}
	return nil
}

// parseWeightLine разбирает строку вида "(1) ИЗ --> В: вес".
func parseWeightLine(line string) (from, to, weight string, err error) {
	cols := strings.Fields(line)
	if len(cols) != 5 {
		return "", "", "", fmt.Errorf("ожидалось 5 колонок, получено %d", len(cols))
	}
	if cols[2] != "-->" {
		return "", "", "", fmt.Errorf("нет разделителя '-->'")
	}
	if !strings.HasSuffix(cols[3], ":") {
		return "", "", "", fmt.Errorf("нет двоеточия после метки")
	}
	return cols[1], strings.TrimSuffix(cols[3], ":"), cols[4], nil
}
