package align

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/steosofficial/hanalprep/sejong"
)

// defaultRulesYAML - базовая таблица исключений.
//
//go:embed rules.yaml
var defaultRulesYAML []byte

// Action - что сделать с остатком, если правило подошло.
type Action string

const (
	// Правила для остатка, где есть и запись, и морфемы.
	ActionAccept              Action = "accept"                 // Принять остаток одной парой как есть.
	ActionShiftFirstToForward Action = "shift_first_to_forward" // Первую морфему остатка - в последнюю прямую пару.
	ActionShiftLastToBackward Action = "shift_last_to_backward" // Последнюю морфему остатка - в первую обратную пару.
	ActionShiftBoth           Action = "shift_both"             // Оба сдвига сразу.
	ActionSplitSyllables      Action = "split_syllables"        // Поровну разложить морфемы по слогам записи.

	// Правила для остатка из одной морфемы.
	ActionToForward  Action = "to_forward"  // Присоединить к последней прямой паре.
	ActionToBackward Action = "to_backward" // Присоединить к первой обратной паре.
)

var (
	residualActions  = map[Action]bool{ActionAccept: true, ActionShiftFirstToForward: true, ActionShiftLastToBackward: true, ActionShiftBoth: true, ActionSplitSyllables: true}
	morphOnlyActions = map[Action]bool{ActionToForward: true, ActionToBackward: true}
)

// Cond - условие на соседнюю морфему: точная морфема, точный тег или префикс тега.
type Cond struct {
	Morph     string `yaml:"morph,omitempty"`
	Tag       string `yaml:"tag,omitempty"`
	TagPrefix string `yaml:"tag_prefix,omitempty"`
}

func (c *Cond) match(m sejong.Morph) bool {
	switch {
	case c.Morph != "":
		return m.String() == c.Morph
	case c.Tag != "":
		return m.Tag == c.Tag
	default:
		return m.HasTagPrefix(c.TagPrefix)
	}
}

func (c *Cond) empty() bool {
	return c.Morph == "" && c.Tag == "" && c.TagPrefix == ""
}

// Rule - одно правило таблицы исключений.
type Rule struct {
	Name   string `yaml:"name"`
	Action Action `yaml:"action"`

	// Остаток "запись + морфемы": точные ключи либо запись из списка при заданном числе морфем.
	Entries    []string `yaml:"entries,omitempty"`
	Surfaces   []string `yaml:"surfaces,omitempty"`
	MorphCount int      `yaml:"morph_count,omitempty"`

	// Остаток из одной морфемы: морфема целиком, тег или префикс тега.
	Morphs      []string `yaml:"morphs,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	TagPrefixes []string `yaml:"tag_prefixes,omitempty"`

	ForwardTail  *Cond `yaml:"forward_tail,omitempty"`
	BackwardHead *Cond `yaml:"backward_head,omitempty"`

	entrySet   map[string]struct{}
	surfaceSet map[string]struct{}
	morphSet   map[string]struct{}
}

// DropRule удаляет остаток морфем, совпавший с шаблоном целиком.
type DropRule struct {
	Name           string `yaml:"name"`
	Morphs         string `yaml:"morphs"`
	ForwardSurface string `yaml:"forward_surface,omitempty"`
}

// RuleSet - таблица исключений. После загрузки только читается.
type RuleSet struct {
	Residual  []Rule     `yaml:"residual"`
	MorphOnly []Rule     `yaml:"morph_only"`
	Drops     []DropRule `yaml:"drops"`
}

// DefaultRules возвращает базовую таблицу исключений.
func DefaultRules() *RuleSet {
	rs, err := ParseRules(defaultRulesYAML)
	if err != nil {
		panic(fmt.Sprintf("встроенная таблица исключений повреждена: %v", err))
	}
	return rs
}

// LoadRules читает таблицу исключений из YAML-файла.
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения таблицы исключений: %w", err)
	}
	rs, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// ParseRules разбирает и проверяет таблицу исключений.
func ParseRules(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("ошибка разбора YAML: %w", err)
	}
	if err := rs.prepare(); err != nil {
		return nil, err
	}
	return &rs, nil
}

func (rs *RuleSet) prepare() error {
	for i := range rs.Residual {
		r := &rs.Residual[i]
		if !residualActions[r.Action] {
			return fmt.Errorf("правило %q: действие %q недопустимо для остатка с записью", r.Name, r.Action)
		}
		if len(r.Entries) == 0 && len(r.Surfaces) == 0 {
			return fmt.Errorf("правило %q: нет ни entries, ни surfaces", r.Name)
		}
		if err := r.prepareConds(); err != nil {
			return err
		}
		r.entrySet = toSet(r.Entries)
		r.surfaceSet = toSet(r.Surfaces)
	}
	for i := range rs.MorphOnly {
		r := &rs.MorphOnly[i]
		if !morphOnlyActions[r.Action] {
			return fmt.Errorf("правило %q: действие %q недопустимо для остатка из морфем", r.Name, r.Action)
		}
		if len(r.Morphs) == 0 && len(r.Tags) == 0 && len(r.TagPrefixes) == 0 {
			return fmt.Errorf("правило %q: нет ни morphs, ни tags, ни tag_prefixes", r.Name)
		}
		if err := r.prepareConds(); err != nil {
			return err
		}
		r.morphSet = toSet(r.Morphs)
	}
	for _, d := range rs.Drops {
		if _, err := sejong.ParseMorphs(d.Morphs); err != nil {
			return fmt.Errorf("правило %q: %w", d.Name, err)
		}
	}
	return nil
}

func (r *Rule) prepareConds() error {
	for _, c := range []*Cond{r.ForwardTail, r.BackwardHead} {
		if c != nil && c.empty() {
			return fmt.Errorf("правило %q: пустое условие на соседа", r.Name)
		}
	}
	return nil
}

// matchResidual проверяет остаток "запись + морфемы" без учета соседей.
func (r *Rule) matchResidual(key, surface string, morphs []sejong.Morph) bool {
	if _, ok := r.entrySet[key]; ok {
		return true
	}
	if _, ok := r.surfaceSet[surface]; ok {
		return r.MorphCount == 0 || r.MorphCount == len(morphs)
	}
	return false
}

// matchMorph проверяет единственную морфему остатка без учета соседей.
func (r *Rule) matchMorph(m sejong.Morph) bool {
	if _, ok := r.morphSet[m.String()]; ok {
		return true
	}
	for _, tag := range r.Tags {
		if m.Tag == tag {
			return true
		}
	}
	for _, prefix := range r.TagPrefixes {
		if strings.HasPrefix(m.Tag, prefix) {
			return true
		}
	}
	return false
}

// matchNeighbours проверяет условия на последнюю прямую и первую обратную пары.
// Если правилу нужен сосед, а его нет, правило не подходит.
func (r *Rule) matchNeighbours(forward, backward []Pair) bool {
	needForward := r.ForwardTail != nil || r.Action == ActionShiftFirstToForward ||
		r.Action == ActionShiftBoth || r.Action == ActionToForward
	needBackward := r.BackwardHead != nil || r.Action == ActionShiftLastToBackward ||
		r.Action == ActionShiftBoth || r.Action == ActionToBackward
	if needForward && !hasMorphs(forward, len(forward)-1) {
		return false
	}
	if needBackward && !hasMorphs(backward, 0) {
		return false
	}
	if r.ForwardTail != nil {
		last := forward[len(forward)-1].Morphs
		if !r.ForwardTail.match(last[len(last)-1]) {
			return false
		}
	}
	if r.BackwardHead != nil && !r.BackwardHead.match(backward[0].Morphs[0]) {
		return false
	}
	return true
}

func hasMorphs(pairs []Pair, idx int) bool {
	return idx >= 0 && idx < len(pairs) && len(pairs[idx].Morphs) > 0
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
