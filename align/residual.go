package align

import (
	"strings"
	"unicode/utf8"

	"github.com/steosofficial/hanalprep/hangul"
	"github.com/steosofficial/hanalprep/sejong"
)

// pauseMarker - разметка паузы устного корпуса, у которой нет морфем.
const pauseMarker = "<pause/>"

// residual - то, что осталось между прямыми и обратными парами.
type residual struct {
	word     sejong.Word
	forward  []Pair
	surface  string
	morphs   []sejong.Morph
	backward []Pair
}

// key - ключ таблицы исключений: "запись м1/Т1 + м2/Т2".
func (r *residual) key() string {
	return r.surface + " " + sejong.JoinMorphs(r.morphs)
}

// resolution - итог разбора остатка. Прямые и обратные пары могут
// отличаться от исходных, если к ним присоединены морфемы остатка.
type resolution struct {
	forward  []Pair
	sandwich []Pair
	backward []Pair
}

// strategy - чистая пара "условие + преобразование". Исходный остаток не меняется.
type strategy struct {
	name  string
	apply func(r *residual) (resolution, bool)
}

// resolve пробует стратегии по порядку; побеждает первая подошедшая.
func (a *Aligner) resolve(r *residual) (resolution, bool) {
	var chain []strategy
	switch {
	case r.surface != "" && len(r.morphs) > 0:
		chain = a.bothChain
	case r.surface != "":
		chain = a.surfaceChain
	default:
		chain = a.morphOnlyChain
	}
	for _, s := range chain {
		if res, ok := s.apply(r); ok {
			return res, true
		}
	}
	return resolution{}, false
}

func (a *Aligner) failureReason(r *residual) string {
	switch {
	case r.surface != "" && len(r.morphs) > 0:
		return "нет правила для остатка, сходство ниже порога"
	case r.surface != "":
		return "остаток записи без морфем"
	default:
		return "остаток морфем без записи"
	}
}

// --- ОСТАТОК "ЗАПИСЬ + МОРФЕМЫ" ---

func (a *Aligner) buildBothChain() []strategy {
	chain := make([]strategy, 0, len(a.rules.Residual)+1)
	for i := range a.rules.Residual {
		rule := &a.rules.Residual[i]
		chain = append(chain, strategy{name: rule.Name, apply: residualRuleStrategy(rule)})
	}
	threshold := a.threshold
	chain = append(chain, strategy{
		name: "similarity",
		apply: func(r *residual) (resolution, bool) {
			if hangul.Similarity(r.surface, sejong.LexConcat(r.morphs)) < threshold {
				return resolution{}, false
			}
			return keepNeighbours(r, Pair{Surface: r.surface, Morphs: cloneMorphs(r.morphs)}), true
		},
	})
	return chain
}

func residualRuleStrategy(rule *Rule) func(r *residual) (resolution, bool) {
	return func(r *residual) (resolution, bool) {
		if !rule.matchResidual(r.key(), r.surface, r.morphs) || !rule.matchNeighbours(r.forward, r.backward) {
			return resolution{}, false
		}
		morphs := r.morphs
		switch rule.Action {
		case ActionAccept:
			return keepNeighbours(r, Pair{Surface: r.surface, Morphs: cloneMorphs(morphs)}), true
		case ActionShiftFirstToForward:
			if len(morphs) < 2 {
				return resolution{}, false
			}
			return resolution{
				forward:  appendToLast(r.forward, morphs[:1]),
				sandwich: []Pair{{Surface: r.surface, Morphs: cloneMorphs(morphs[1:])}},
				backward: r.backward,
			}, true
		case ActionShiftLastToBackward:
			if len(morphs) < 2 {
				return resolution{}, false
			}
			return resolution{
				forward:  r.forward,
				sandwich: []Pair{{Surface: r.surface, Morphs: cloneMorphs(morphs[:len(morphs)-1])}},
				backward: prependToFirst(r.backward, morphs[len(morphs)-1:]),
			}, true
		case ActionShiftBoth:
			if len(morphs) < 3 {
				return resolution{}, false
			}
			return resolution{
				forward:  appendToLast(r.forward, morphs[:1]),
				sandwich: []Pair{{Surface: r.surface, Morphs: cloneMorphs(morphs[1 : len(morphs)-1])}},
				backward: prependToFirst(r.backward, morphs[len(morphs)-1:]),
			}, true
		case ActionSplitSyllables:
			// Два слога: первая половина морфем - первому, вторая - второму.
			if utf8.RuneCountInString(r.surface) != 2 || len(morphs) < 2 || len(morphs)%2 != 0 {
				return resolution{}, false
			}
			syllables := []rune(r.surface)
			half := len(morphs) / 2
			return resolution{
				forward: r.forward,
				sandwich: []Pair{
					{Surface: string(syllables[0]), Morphs: cloneMorphs(morphs[:half])},
					{Surface: string(syllables[1]), Morphs: cloneMorphs(morphs[half:])},
				},
				backward: r.backward,
			}, true
		}
		return resolution{}, false
	}
}

// --- ОСТАТОК ЗАПИСИ ---

func surfaceOnlyChain() []strategy {
	return []strategy{
		{name: "full-stop", apply: func(r *residual) (resolution, bool) {
			if r.surface != "." || !strings.HasSuffix(r.word.Raw, ".") {
				return resolution{}, false
			}
			return keepNeighbours(r, Pair{Surface: r.surface, Morphs: []sejong.Morph{{Lex: ".", Tag: "SF"}}}), true
		}},
		{name: "tilde", apply: func(r *residual) (resolution, bool) {
			if r.surface != "~" || len(r.backward) > 1 {
				return resolution{}, false
			}
			return keepNeighbours(r, Pair{Surface: r.surface, Morphs: []sejong.Morph{{Lex: "~", Tag: "SO"}}}), true
		}},
		{name: "comma", apply: func(r *residual) (resolution, bool) {
			if r.surface != "," || len(r.backward) > 0 {
				return resolution{}, false
			}
			return keepNeighbours(r, Pair{Surface: r.surface, Morphs: []sejong.Morph{{Lex: ",", Tag: "SP"}}}), true
		}},
		{name: "pause", apply: func(r *residual) (resolution, bool) {
			if r.surface != pauseMarker {
				return resolution{}, false
			}
			return resolution{forward: r.forward, backward: r.backward}, true
		}},
	}
}

// --- ОСТАТОК МОРФЕМ ---

func (a *Aligner) buildMorphOnlyChain() []strategy {
	chain := []strategy{{
		name: "no-backward",
		apply: func(r *residual) (resolution, bool) {
			if len(r.backward) > 0 || !hasMorphs(r.forward, len(r.forward)-1) {
				return resolution{}, false
			}
			return resolution{forward: appendToLast(r.forward, r.morphs)}, true
		},
	}}
	for i := range a.rules.MorphOnly {
		rule := &a.rules.MorphOnly[i]
		chain = append(chain, strategy{name: rule.Name, apply: morphOnlyRuleStrategy(rule)})
	}
	for i := range a.rules.Drops {
		drop := &a.rules.Drops[i]
		chain = append(chain, strategy{name: drop.Name, apply: dropStrategy(drop)})
	}
	return chain
}

func morphOnlyRuleStrategy(rule *Rule) func(r *residual) (resolution, bool) {
	return func(r *residual) (resolution, bool) {
		if len(r.backward) == 0 || len(r.morphs) != 1 {
			return resolution{}, false
		}
		if !rule.matchMorph(r.morphs[0]) || !rule.matchNeighbours(r.forward, r.backward) {
			return resolution{}, false
		}
		if rule.Action == ActionToBackward {
			return resolution{forward: r.forward, backward: prependToFirst(r.backward, r.morphs)}, true
		}
		return resolution{forward: appendToLast(r.forward, r.morphs), backward: r.backward}, true
	}
}

func dropStrategy(drop *DropRule) func(r *residual) (resolution, bool) {
	return func(r *residual) (resolution, bool) {
		if len(r.backward) == 0 || len(r.morphs) < 2 || sejong.JoinMorphs(r.morphs) != drop.Morphs {
			return resolution{}, false
		}
		if drop.ForwardSurface != "" && (len(r.forward) == 0 || r.forward[len(r.forward)-1].Surface != drop.ForwardSurface) {
			return resolution{}, false
		}
		return resolution{forward: r.forward, backward: r.backward}, true
	}
}

// --- ВСПОМОГАТЕЛЬНЫЕ ФУНКЦИИ ---

func keepNeighbours(r *residual, sandwich ...Pair) resolution {
	return resolution{forward: r.forward, sandwich: sandwich, backward: r.backward}
}

// appendToLast возвращает копию пар, где к последней паре дописаны морфемы.
func appendToLast(pairs []Pair, morphs []sejong.Morph) []Pair {
	result := clonePairs(pairs)
	last := &result[len(result)-1]
	last.Morphs = append(last.Morphs, morphs...)
	return result
}

// prependToFirst возвращает копию пар, где перед морфемами первой пары вставлены морфемы.
func prependToFirst(pairs []Pair, morphs []sejong.Morph) []Pair {
	result := clonePairs(pairs)
	first := &result[0]
	first.Morphs = append(cloneMorphs(morphs), first.Morphs...)
	return result
}
