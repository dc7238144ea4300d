package align

import (
	"errors"
	"fmt"

	"github.com/steosofficial/hanalprep/sejong"
)

// ErrNotAligned - словоформу не удалось выровнять.
var ErrNotAligned = errors.New("словоформа не выровнена")

// Error описывает невыровненную словоформу вместе с частичным результатом,
// чтобы по нему можно было дописать таблицу исключений.
type Error struct {
	Word     sejong.Word
	Forward  []Pair
	Surface  string
	Morphs   []sejong.Morph
	Backward []Pair
	Reason   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: [%s] %s: %s", ErrNotAligned, e.Word.Raw, sejong.JoinMorphs(e.Word.Morphs), e.Reason)
}

func (e *Error) Unwrap() error {
	return ErrNotAligned
}

// ResidualKey - остаток в формате ключа таблицы исключений.
func (e *Error) ResidualKey() string {
	switch {
	case e.Surface != "" && len(e.Morphs) > 0:
		return e.Surface + " " + sejong.JoinMorphs(e.Morphs)
	case e.Surface != "":
		return e.Surface
	default:
		return sejong.JoinMorphs(e.Morphs)
	}
}
