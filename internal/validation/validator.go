// Package validation evaluates declarative business rules on create and
// update payloads before they are sent to the backend.
package validation

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"
)

// Severity classifies a finding / Classe un constat
type Severity string

const (
	SeverityError      Severity = "error"      // Blocks submission / Bloque l'envoi
	SeverityWarning    Severity = "warning"    // Allowed but risky / Autorisé mais risqué
	SeveritySuggestion Severity = "suggestion" // Advisory only / Simple conseil
)

// Rule is one synchronous check; Check returns true when data passes / Règle synchrone ; Check renvoie true si la donnée est conforme
type Rule[T any] struct {
	Check    func(T) bool
	Severity Severity
	Message  string
	Describe func(T) string // Optional message built from the data / Message optionnel construit à partir de la donnée
}

// As returns a copy of the rule with another severity / Retourne une copie avec une autre sévérité
func (r Rule[T]) As(s Severity) Rule[T] {
	r.Severity = s
	return r
}

func (r Rule[T]) message(data T) string {
	if r.Describe != nil {
		return r.Describe(data)
	}
	return r.Message
}

// Finding is one message produced by a sub-check / Message produit par une sous-vérification
type Finding struct {
	Severity Severity
	Message  string
}

// Outcome is what a sub-check contributes to the result / Contribution d'une sous-vérification au résultat
type Outcome struct {
	Findings []Finding
	Extras   map[string]any
}

// SubCheck is a backend-assisted check (uniqueness, stock, content analysis) / Vérification assistée par le backend
type SubCheck[T any] struct {
	Name     string
	Run      func(ctx context.Context, data T) (Outcome, error)
	Fallback Outcome // Applied when Run fails / Appliqué quand Run échoue
}

// FailOpen declares a sub-check whose failure applies fallback instead of blocking.
// FailOpen déclare une sous-vérification dont l'échec applique fallback au lieu de bloquer
func FailOpen[T any](name string, run func(ctx context.Context, data T) (Outcome, error), fallback Outcome) SubCheck[T] {
	return SubCheck[T]{Name: name, Run: run, Fallback: fallback}
}

// Recorder receives validation metrics / Reçoit les métriques de validation
type Recorder interface {
	RecordValidation(entity string, valid bool, errors, warnings, suggestions int)
	RecordFailOpen(entity, check string)
}

// Validator evaluates rules then sub-checks, in declaration order / Évalue les règles puis les sous-vérifications
type Validator[T any] struct {
	Entity    string
	Rules     []Rule[T]
	SubChecks []SubCheck[T]

	// Strict turns a failed sub-check into an error instead of a warning.
	Strict   bool
	Recorder Recorder
}

// Result is the validation report / Rapport de validation
type Result struct {
	IsValid     bool           `json:"isValid"`
	Errors      []string       `json:"errors"`
	Warnings    []string       `json:"warnings"`
	Suggestions []string       `json:"suggestions"`
	Extras      map[string]any `json:"extras,omitempty"`
}

func newResult() *Result {
	return &Result{
		Errors:      []string{},
		Warnings:    []string{},
		Suggestions: []string{},
		Extras:      map[string]any{},
	}
}

func (r *Result) add(s Severity, msg string) {
	switch s {
	case SeverityError:
		r.Errors = append(r.Errors, msg)
	case SeverityWarning:
		r.Warnings = append(r.Warnings, msg)
	default:
		r.Suggestions = append(r.Suggestions, msg)
	}
}

func (r *Result) apply(o Outcome) {
	for _, f := range o.Findings {
		r.add(f.Severity, f.Message)
	}
	maps.Copy(r.Extras, o.Extras)
}

// Err returns nil when valid, else a *ValidationError joining every error / Retourne nil si valide, sinon une *ValidationError
func (r *Result) Err() error {
	if r.IsValid {
		return nil
	}
	return &ValidationError{Errors: r.Errors}
}

// Validate runs every rule and sub-check against data / Exécute toutes les règles et sous-vérifications
func (v *Validator[T]) Validate(ctx context.Context, data T) *Result {
	res := newResult()

	for _, rule := range v.Rules {
		if rule.Check(data) {
			continue
		}
		res.add(rule.Severity, rule.message(data))
	}

	for _, sc := range v.SubChecks {
		outcome, err := sc.Run(ctx, data)
		if err == nil {
			res.apply(outcome)
			continue
		}

		slog.Warn("validation: sub-check failed, applying fallback",
			"entity", v.Entity,
			"check", sc.Name,
			"strict", v.Strict,
			"err", err)
		if v.Recorder != nil {
			v.Recorder.RecordFailOpen(v.Entity, sc.Name)
		}

		res.apply(sc.Fallback)
		if v.Strict {
			res.add(SeverityError, fmt.Sprintf("vérification %q indisponible", sc.Name))
		} else {
			res.add(SeverityWarning, fmt.Sprintf("vérification %q indisponible, ignorée", sc.Name))
		}
	}

	res.IsValid = len(res.Errors) == 0
	if v.Recorder != nil {
		v.Recorder.RecordValidation(v.Entity, res.IsValid, len(res.Errors), len(res.Warnings), len(res.Suggestions))
	}
	return res
}

// ValidationError aggregates blocking errors / Agrège les erreurs bloquantes
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation échouée: " + strings.Join(e.Errors, "; ")
}
