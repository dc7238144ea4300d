// tagset.go определяет набор морфологических тегов корпуса Sejong.
// Отсортированный список тегов задает нумерацию меток, общую для словаря
// признаков состояний, матрицы переходов и внешнего теггера.
package sejong

import (
	"sort"
	"strings"
)

// TagSet - это множество тегов.
type TagSet map[string]struct{}

// Category - укрупненная группа тега (체언, 용언, 어미 ...).
type Category string

const (
	CategoryNoun        Category = "체언"  // Существительные, местоимения, числительные.
	CategoryPredicate   Category = "용언"  // Глаголы, прилагательные, связки.
	CategoryModifier    Category = "수식언" // Наречия и определительные слова.
	CategoryIndependent Category = "독립언" // Междометия.
	CategoryParticle    Category = "관계언" // Частицы.
	CategoryEnding      Category = "어미"  // Окончания.
	CategoryAffix       Category = "접사"  // Префиксы, суффиксы и корни.
	CategorySymbol      Category = "기호"  // Знаки препинания и прочие символы.
	CategoryUnknown     Category = ""
)

// Глобальные множества тегов по категориям.
// Используются `Classify` и при построении общего набора `Tags`.
var (
	nounTags = TagSet{
		"NNG": {}, // 일반명사
		"NNP": {}, // 고유명사
		"NNB": {}, // 의존명사
		"NP":  {}, // 대명사
		"NR":  {}, // 수사
	}

	predicateTags = TagSet{
		"VV":  {}, // 동사
		"VA":  {}, // 형용사
		"VX":  {}, // 보조용언
		"VCP": {}, // 긍정지정사
		"VCN": {}, // 부정지정사
	}

	modifierTags = TagSet{
		"MM":  {}, // 관형사
		"MAG": {}, // 일반부사
		"MAJ": {}, // 접속부사
	}

	independentTags = TagSet{
		"IC": {}, // 감탄사
	}

	particleTags = TagSet{
		"JKS": {}, // 주격조사
		"JKC": {}, // 보격조사
		"JKG": {}, // 관형격조사
		"JKO": {}, // 목적격조사
		"JKB": {}, // 부사격조사
		"JKV": {}, // 호격조사
		"JKQ": {}, // 인용격조사
		"JX":  {}, // 보조사
		"JC":  {}, // 접속조사
	}

	endingTags = TagSet{
		"EP":  {}, // 선어말어미
		"EF":  {}, // 종결어미
		"EC":  {}, // 연결어미
		"ETN": {}, // 명사형전성어미
		"ETM": {}, // 관형형전성어미
	}

	affixTags = TagSet{
		"XPN": {}, // 체언접두사
		"XSN": {}, // 명사파생접미사
		"XSV": {}, // 동사파생접미사
		"XSA": {}, // 형용사파생접미사
		"XR":  {}, // 어근
	}

	symbolTags = TagSet{
		"SF": {}, // 마침표, 물음표, 느낌표
		"SP": {}, // 쉼표, 가운뎃점, 콜론, 빗금
		"SS": {}, // 따옴표, 괄호, 줄표
		"SE": {}, // 줄임표
		"SO": {}, // 붙임표(물결, 숨김, 빠짐)
		"SW": {}, // 기타 기호
		"SH": {}, // 한자
		"SL": {}, // 외국어
		"SN": {}, // 숫자
		"NF": {}, // 명사추정범주
		"NV": {}, // 동사추정범주
		"NA": {}, // 분석불능범주
	}

	categories = []struct {
		category Category
		tags     TagSet
	}{
		{CategoryNoun, nounTags},
		{CategoryPredicate, predicateTags},
		{CategoryModifier, modifierTags},
		{CategoryIndependent, independentTags},
		{CategoryParticle, particleTags},
		{CategoryEnding, endingTags},
		{CategoryAffix, affixTags},
		{CategorySymbol, symbolTags},
	}

	// Tags - полный набор из 45 тегов.
	Tags = func() TagSet {
		all := make(TagSet)
		for _, c := range categories {
			for tag := range c.tags {
				all[tag] = struct{}{}
			}
		}
		return all
	}()

	sortedTags = func() []string {
		tags := make([]string, 0, len(Tags))
		for tag := range Tags {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		return tags
	}()

	tagIndex = func() map[string]int {
		idx := make(map[string]int, len(sortedTags))
		for i, tag := range sortedTags {
			idx[tag] = i
		}
		return idx
	}()
)

// SortedTags возвращает копию списка тегов в порядке кодовых точек.
// Номер тега в этом списке - его идентификатор во всех бинарных ресурсах.
func SortedTags() []string {
	tags := make([]string, len(sortedTags))
	copy(tags, sortedTags)
	return tags
}

// TagIndex возвращает номер тега в `SortedTags`.
func TagIndex(tag string) (int, bool) {
	idx, ok := tagIndex[tag]
	return idx, ok
}

// IsValidTag сообщает, входит ли тег в набор Sejong.
func IsValidTag(tag string) bool {
	return inSet(tag, Tags)
}

// Classify возвращает категорию тега или CategoryUnknown.
func Classify(tag string) Category {
	for _, c := range categories {
		if inSet(tag, c.tags) {
			return c.category
		}
	}
	return CategoryUnknown
}

// HasTagPrefix проверяет тег морфемы по префиксу ("V" подходит для VV, VA, VX ...).
func (m Morph) HasTagPrefix(prefix string) bool {
	return strings.HasPrefix(m.Tag, prefix)
}

func inSet(key string, set TagSet) bool {
	_, ok := set[key]
	return ok
}
