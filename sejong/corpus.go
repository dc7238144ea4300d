package sejong

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Dialect - вид корпуса. От него зависит разметка границ предложений
// и очистка исходной записи словоформ.
type Dialect int

const (
	Written Dialect = iota // Письменный корпус (<head>, <p>).
	Spoken                 // Устный корпус (<s ...>, </s>).
)

func (d Dialect) String() string {
	if d == Spoken {
		return "spoken"
	}
	return "written"
}

// ParseDialect разбирает название вида корпуса.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "written":
		return Written, nil
	case "spoken":
		return Spoken, nil
	default:
		return Written, fmt.Errorf("неизвестный вид корпуса: %q", s)
	}
}

// ParseError - ошибка разбора строки корпуса.
type ParseError struct {
	Name string // Имя источника (файла), если задано.
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v: %q", e.Name, e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	writtenSentOpen  = []string{"<head>", "<p>"}
	writtenSentClose = []string{"</head>", "</p>"}
	writtenInSent    = []string{"<date>", "</date>"}

	spokenInSentOpen = []string{
		"<anchor", "<applauding", "<dia", "<event", "<kinesics", "<latching", "<laughing", "<note", "<pause",
		"<quotation", "<read", "<reading", "<singing", "<trunc", "<unclear", "<vocal",
	}
	spokenInSentClose = func() []string {
		tags := make([]string, len(spokenInSentOpen))
		for i, tag := range spokenInSentOpen {
			tags[i] = "</" + tag[1:]
		}
		return tags
	}()

	lineIDPattern = regexp.MustCompile(`^[0-9A-Z_]{4}\d{4}-\d{7,8}`)

	spokenMarkup = []*regexp.Regexp{
		regexp.MustCompile(`<anchor [^>]+/?>`),
		regexp.MustCompile(`<event [^>]+/?>`),
		regexp.MustCompile(`<kinesics [^>]+/?>`),
		regexp.MustCompile(`<p>.*</p>`),
		regexp.MustCompile(`<pause [^>]+/?>`),
		regexp.MustCompile(`<phon>.*</phon>`),
		regexp.MustCompile(`<sound [^>]+/?>`),
		regexp.MustCompile(`<vocal [^>]+/?>`),
	}
)

// Reader лениво читает корпус по одному предложению.
type Reader struct {
	Name string // Имя источника для сообщений об ошибках.

	scanner *bufio.Scanner
	dialect Dialect
	lineNum int
}

// NewReader создает читатель корпуса в кодировке UTF-16LE (BOM учитывается).
func NewReader(r io.Reader, d Dialect) *Reader {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	return NewUTF8Reader(transform.NewReader(r, dec), d)
}

// NewUTF8Reader создает читатель корпуса, уже перекодированного в UTF-8.
func NewUTF8Reader(r io.Reader, d Dialect) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	return &Reader{scanner: scanner, dialect: d}
}

// Next возвращает очередное предложение или io.EOF.
func (r *Reader) Next() (*Sentence, error) {
	var sent *Sentence
	for r.scanner.Scan() {
		r.lineNum++
		line := strings.TrimPrefix(r.scanner.Text(), "\uFEFF")
		if lineIDPattern.MatchString(line) {
			if _, rest, ok := strings.Cut(line, "\t"); ok {
				line = rest
			}
		}
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case r.isOpening(line):
			sent = &Sentence{}
			continue
		case r.isClosing(line):
			if sent != nil {
				return sent, nil
			}
			continue
		case sent == nil:
			continue
		}

		word, ok, err := r.parseWord(line)
		if err != nil {
			return nil, &ParseError{Name: r.Name, Line: r.lineNum, Text: line, Err: err}
		}
		if ok {
			sent.Words = append(sent.Words, word)
		}
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения корпуса %s: %w", r.Name, err)
	}
	return nil, io.EOF
}

func (r *Reader) isOpening(line string) bool {
	if r.dialect == Spoken {
		return strings.HasPrefix(line, "<s ")
	}
	return contains(writtenSentOpen, line)
}

func (r *Reader) isClosing(line string) bool {
	if r.dialect == Spoken {
		return strings.HasPrefix(line, "</s>")
	}
	return contains(writtenSentClose, line)
}

func (r *Reader) isTagInSent(line string) bool {
	if r.dialect == Spoken {
		if !strings.HasPrefix(line, "<") {
			return false
		}
		for _, tag := range spokenInSentOpen {
			if strings.HasPrefix(line, tag) {
				return true
			}
		}
		for _, tag := range spokenInSentClose {
			if strings.HasPrefix(line, tag) {
				return true
			}
		}
		return false
	}
	return contains(writtenInSent, line)
}

// parseWord разбирает строку словоформы. ok == false для служебной разметки внутри предложения.
func (r *Reader) parseWord(line string) (Word, bool, error) {
	cols := strings.Split(line, "\t")
	if len(cols) != 2 {
		if r.isTagInSent(line) {
			return Word{}, false, nil
		}
		return Word{}, false, fmt.Errorf("ожидается две колонки, получено %d", len(cols))
	}
	raw, analysis := cols[0], cols[1]
	if r.dialect == Spoken {
		raw = CleanSpoken(raw)
		analysis = strings.Join(strings.Split(analysis, "+"), MorphDelim)
	}
	morphs, err := ParseMorphs(analysis)
	if err != nil {
		return Word{}, false, err
	}
	return Word{Raw: raw, Morphs: morphs}, true, nil
}

// CleanSpoken удаляет из записи устной речи разметку пауз, событий и т.п.
func CleanSpoken(raw string) string {
	for _, re := range spokenMarkup {
		raw = re.ReplaceAllString(raw, "")
	}
	raw = strings.ReplaceAll(raw, "::", "")
	// Пустой тег паузы "<pause/>" намеренно остается: его снимает выравнивание.
	for _, tag := range spokenInSentOpen {
		raw = strings.ReplaceAll(raw, tag+">", "")
	}
	for _, tag := range spokenInSentClose {
		raw = strings.ReplaceAll(raw, tag+">", "")
	}
	return strings.TrimSpace(raw)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
