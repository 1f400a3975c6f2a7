// Copyright EpiMind Project, 2026. All rights reserved.

// Package patterns implements the extraction rule library: an open,
// append-only registry of named rules that match medical values, device
// mentions, pathogen names and resistance markers in normalized document
// text. Rules are evaluated independently; overlapping matches are
// preserved and resolved later by the validator.
package patterns

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/razorlong2/epimind-app/pkg/types"
)

// ValueShape declares what a rule's capture group must parse as.
type ValueShape string

const (
	ShapeInteger ValueShape = "integer"
	ShapeDecimal ValueShape = "decimal"
	ShapeToken   ValueShape = "token"
	ShapeEntity  ValueShape = "entity"
)

// Rule is one named extraction rule. Rules are immutable after
// registration; a registry identifier is stable across runs.
type Rule struct {
	// ID is the stable rule identifier (e.g. "wbc-labeled-ro").
	ID string `json:"id" yaml:"id"`

	// Field is the logical field the rule targets.
	Field types.FieldID `json:"field" yaml:"field"`

	// PairField, when set, receives a second fact parsed from the
	// rule's second capture group (blood pressure "120/80" pairs).
	PairField types.FieldID `json:"pair_field,omitempty" yaml:"pair_field,omitempty"`

	// Kind categorizes the produced facts.
	Kind types.FactKind `json:"kind" yaml:"kind"`

	// Shape declares the expected value shape of the first capture
	// group. Matches violating the shape are silently dropped.
	Shape ValueShape `json:"shape" yaml:"shape"`

	// Language restricts the rule to a pattern set: "ro", "en", or
	// "any" for language-neutral rules.
	Language string `json:"language" yaml:"language"`

	// Expr is the match expression, compiled case-insensitively at
	// registration time against diacritic-folded text.
	Expr string `json:"expr" yaml:"expr"`

	// Unit is the declared reporting unit for numeric rules.
	Unit string `json:"unit,omitempty" yaml:"unit,omitempty"`

	// Canonical is the normalized entity text emitted for token and
	// entity rules (canonical organism or marker name).
	Canonical string `json:"canonical,omitempty" yaml:"canonical,omitempty"`

	// Priority breaks confidence ties during validation; more specific
	// rules carry higher values.
	Priority int `json:"priority" yaml:"priority"`

	// Confidence is the base confidence assigned to matches, in [0,1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	re *regexp.Regexp
}

// Registry is an append-only collection of rules keyed by identifier.
// Registering a colliding identifier is an error, never an override, so
// conflicts surface deterministically at startup.
type Registry struct {
	rules map[string]*Rule
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]*Rule)}
}

// Register validates and compiles a rule, then adds it to the registry.
func (r *Registry) Register(rule Rule) error {
	if rule.ID == "" {
		return fmt.Errorf("rule has empty identifier")
	}
	if _, exists := r.rules[rule.ID]; exists {
		return fmt.Errorf("rule %q already registered", rule.ID)
	}
	if rule.Field == "" {
		return fmt.Errorf("rule %q has no target field", rule.ID)
	}
	if rule.Expr == "" {
		return fmt.Errorf("rule %q has no match expression", rule.ID)
	}
	switch rule.Language {
	case "ro", "en", "any":
	case "":
		rule.Language = "any"
	default:
		return fmt.Errorf("rule %q: unsupported language %q", rule.ID, rule.Language)
	}
	if rule.Confidence <= 0 || rule.Confidence > 1 {
		return fmt.Errorf("rule %q: confidence %v outside (0,1]", rule.ID, rule.Confidence)
	}

	re, err := regexp.Compile("(?i)" + rule.Expr)
	if err != nil {
		return fmt.Errorf("rule %q: compiling expression: %w", rule.ID, err)
	}
	rule.re = re

	r.rules[rule.ID] = &rule
	return nil
}

// Rules returns all registered rules sorted by identifier.
func (r *Registry) Rules() []Rule {
	out := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, *rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Lookup returns the rule with the given identifier.
func (r *Registry) Lookup(id string) (Rule, bool) {
	rule, ok := r.rules[id]
	if !ok {
		return Rule{}, false
	}
	return *rule, true
}

// Priority returns the registered priority for a rule identifier, or 0
// for unknown rules. The validator uses this for tie-breaking.
func (r *Registry) Priority(id string) int {
	if rule, ok := r.rules[id]; ok {
		return rule.Priority
	}
	return 0
}

// Match applies every rule for the given language ("ro" or "en") to the
// normalized text and returns all candidate facts, sorted by span start
// and rule identifier so the output is identical across runs. Rules may
// overlap; resolution is the validator's job, not ours.
func (r *Registry) Match(text, lang string) []types.CandidateFact {
	var out []types.CandidateFact
	for _, rule := range r.Rules() {
		if rule.Language != "any" && rule.Language != lang {
			continue
		}
		out = append(out, matchRule(rule, text)...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Span.Start != out[j].Span.Start {
			return out[i].Span.Start < out[j].Span.Start
		}
		return out[i].RuleID < out[j].RuleID
	})
	return out
}

func matchRule(rule Rule, text string) []types.CandidateFact {
	matches := rule.re.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return nil
	}

	var facts []types.CandidateFact
	for _, m := range matches {
		fact := types.CandidateFact{
			Kind:       rule.Kind,
			Field:      rule.Field,
			Raw:        text[m[0]:m[1]],
			Span:       types.Span{Start: m[0], End: m[1]},
			Unit:       rule.Unit,
			Confidence: rule.Confidence,
			RuleID:     rule.ID,
		}

		switch rule.Shape {
		case ShapeInteger, ShapeDecimal:
			v, ok := parseNumeric(rule, text, m)
			if !ok {
				// Shape violation: drop silently, the caller always
				// receives a best-effort candidate set.
				continue
			}
			fact.Value = v
		case ShapeToken, ShapeEntity:
			fact.Text = rule.Canonical
			if fact.Text == "" {
				fact.Text = strings.TrimSpace(text[m[0]:m[1]])
			}
		}

		facts = append(facts, fact)

		if rule.PairField != "" && len(m) >= 6 && m[4] >= 0 {
			pair, err := strconv.ParseFloat(text[m[4]:m[5]], 64)
			if err != nil {
				continue
			}
			second := fact
			second.Field = rule.PairField
			second.Value = pair
			facts = append(facts, second)
		}
	}
	return facts
}

// parseNumeric extracts and parses the first capture group according to
// the rule shape.
func parseNumeric(rule Rule, text string, m []int) (float64, bool) {
	if len(m) < 4 || m[2] < 0 {
		return 0, false
	}
	raw := text[m[2]:m[3]]
	switch rule.Shape {
	case ShapeInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, false
		}
		return float64(n), true
	default:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
}
