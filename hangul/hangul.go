// Пакет hangul раскладывает слоги хангыля на фонемные составляющие (чамо).
// Разложение используется как ключ сравнения, не зависящий от того, в какой
// слог "переехала" согласная при стяжении: 해 == 하+아 по буквам не совпадает,
// а вот 간 и 가+ᆫ после разложения совпадают.
package hangul

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/unicode/norm"
)

// --- ДИАПАЗОНЫ СИМВОЛОВ ---

const (
	syllableFirst = 0xAC00 // 가
	syllableLast  = 0xD7A3 // 힣

	jamoFirst = 0x1100 // Начало блока conjoining jamo.
	jamoLast  = 0x11FF

	compatJamoFirst = 0x3131 // ㄱ
	compatJamoLast  = 0x318E
)

// jongToCho переводит конечную согласную (받침) в форму начальной,
// если такая начальная согласная существует. Сдвоенные конечные (ᆪ, ᆬ, ...)
// своей начальной пары не имеют и остаются как есть.
var jongToCho = map[rune]rune{
	0x11A8: 0x1100, // ᆨ -> ᄀ
	0x11A9: 0x1101, // ᆩ -> ᄁ
	0x11AB: 0x1102, // ᆫ -> ᄂ
	0x11AE: 0x1103, // ᆮ -> ᄃ
	0x11AF: 0x1105, // ᆯ -> ᄅ
	0x11B7: 0x1106, // ᆷ -> ᄆ
	0x11B8: 0x1107, // ᆸ -> ᄇ
	0x11BA: 0x1109, // ᆺ -> ᄉ
	0x11BB: 0x110A, // ᆻ -> ᄊ
	0x11BC: 0x110B, // ᆼ -> ᄋ
	0x11BD: 0x110C, // ᆽ -> ᄌ
	0x11BE: 0x110E, // ᆾ -> ᄎ
	0x11BF: 0x110F, // ᆿ -> ᄏ
	0x11C0: 0x1110, // ᇀ -> ᄐ
	0x11C1: 0x1111, // ᇁ -> ᄑ
	0x11C2: 0x1112, // ᇂ -> ᄒ
}

// IsSyllable сообщает, является ли символ готовым слогом хангыля.
func IsSyllable(r rune) bool {
	return r >= syllableFirst && r <= syllableLast
}

// IsHangul сообщает, относится ли символ к письменности хангыль
// (слог, conjoining jamo или jamo совместимости).
func IsHangul(r rune) bool {
	return IsSyllable(r) ||
		(r >= jamoFirst && r <= jamoLast) ||
		(r >= compatJamoFirst && r <= compatJamoLast)
}

// Decompose раскладывает текст на фонемы. Символы вне хангыля копируются без изменений.
// Для любых a и b выполняется Decompose(a+b) == Decompose(a) + Decompose(b).
func Decompose(text string) string {
	if text == "" {
		return ""
	}
	var sb strings.Builder
	sb.Grow(len(text) * 3)
	for _, r := range text {
		appendRune(&sb, r)
	}
	return sb.String()
}

// DecomposeRune раскладывает один символ.
func DecomposeRune(r rune) string {
	var sb strings.Builder
	appendRune(&sb, r)
	return sb.String()
}

func appendRune(sb *strings.Builder, r rune) {
	switch {
	case IsSyllable(r):
		for _, j := range norm.NFD.String(string(r)) {
			sb.WriteRune(toInitial(j))
		}
	case r >= compatJamoFirst && r <= compatJamoLast:
		// ㄹ -> ᄅ, ㅏ -> ᅡ: приводим jamo совместимости к conjoining-форме.
		for _, j := range norm.NFKD.String(string(r)) {
			sb.WriteRune(toInitial(j))
		}
	case r >= jamoFirst && r <= jamoLast:
		sb.WriteRune(toInitial(r))
	default:
		sb.WriteRune(r)
	}
}

func toInitial(r rune) rune {
	if cho, ok := jongToCho[r]; ok {
		return cho
	}
	return r
}

// Similarity - сходство двух строк по расстоянию редактирования между их разложениями:
// (maxLen - dist) / maxLen. Результат всегда в [0, 1]; для двух пустых строк это 1.
func Similarity(lhs, rhs string) float64 {
	lhsDec, rhsDec := Decompose(lhs), Decompose(rhs)
	maxLen := max(len([]rune(lhsDec)), len([]rune(rhsDec)))
	if maxLen == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(lhsDec, rhsDec)
	return float64(maxLen-dist) / float64(maxLen)
}
