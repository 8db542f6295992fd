package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Required fails when get returns a blank string / Échoue quand get retourne une chaîne vide
func Required[T any](field string, get func(T) string) Rule[T] {
	return Rule[T]{
		Check:    func(d T) bool { return strings.TrimSpace(get(d)) != "" },
		Severity: SeverityError,
		Message:  fmt.Sprintf("le champ %s est obligatoire", field),
	}
}

// MaxLength fails when the value exceeds max characters; blank passes.
func MaxLength[T any](field string, get func(T) string, max int) Rule[T] {
	return Rule[T]{
		Check:    func(d T) bool { return utf8.RuneCountInString(get(d)) <= max },
		Severity: SeverityError,
		Message:  fmt.Sprintf("le champ %s ne doit pas dépasser %d caractères", field, max),
	}
}

// MinLength fails when a non-blank value is shorter than min characters.
func MinLength[T any](field string, get func(T) string, min int) Rule[T] {
	return Rule[T]{
		Check: func(d T) bool {
			v := strings.TrimSpace(get(d))
			return v == "" || utf8.RuneCountInString(v) >= min
		},
		Severity: SeverityError,
		Message:  fmt.Sprintf("le champ %s doit contenir au moins %d caractères", field, min),
	}
}

// Matches fails when a non-blank value does not match re.
func Matches[T any](field string, get func(T) string, re *regexp.Regexp, hint string) Rule[T] {
	return Rule[T]{
		Check: func(d T) bool {
			v := get(d)
			return v == "" || re.MatchString(v)
		},
		Severity: SeverityError,
		Message:  fmt.Sprintf("le champ %s est invalide (%s)", field, hint),
	}
}

// OneOf fails when a non-blank value is rejected by valid / Échoue quand une valeur non vide est hors énumération
func OneOf[T any](field string, get func(T) string, valid func(string) bool) Rule[T] {
	return Rule[T]{
		Check: func(d T) bool {
			v := get(d)
			return v == "" || valid(v)
		},
		Severity: SeverityError,
		Describe: func(d T) string {
			return fmt.Sprintf("valeur %q invalide pour le champ %s", get(d), field)
		},
	}
}

// Between fails when a non-zero value is outside [min, max]; zero means absent.
func Between[T any](field string, get func(T) int, min, max int) Rule[T] {
	return Rule[T]{
		Check: func(d T) bool {
			v := get(d)
			return v == 0 || (v >= min && v <= max)
		},
		Severity: SeverityError,
		Message:  fmt.Sprintf("le champ %s doit être compris entre %d et %d", field, min, max),
	}
}

// UUID fails when a non-blank value is not a UUID / Échoue quand une valeur non vide n'est pas un UUID
func UUID[T any](field string, get func(T) string) Rule[T] {
	return Rule[T]{
		Check: func(d T) bool {
			v := get(d)
			if v == "" {
				return true
			}
			_, err := uuid.Parse(v)
			return err == nil
		},
		Severity: SeverityError,
		Message:  fmt.Sprintf("le champ %s doit être un UUID valide", field),
	}
}

// Email warns when a non-blank value does not look like an address / Avertit quand l'adresse semble invalide
func Email[T any](field string, get func(T) string) Rule[T] {
	return Rule[T]{
		Check: func(d T) bool {
			v := strings.TrimSpace(get(d))
			if v == "" {
				return true
			}
			addr, err := mail.ParseAddress(v)
			return err == nil && addr.Address == v && strings.Contains(v[strings.LastIndex(v, "@"):], ".")
		},
		Severity: SeverityWarning,
		Message:  fmt.Sprintf("le champ %s ne ressemble pas à une adresse email", field),
	}
}

// Suggest emits message as a suggestion when missing reports true.
func Suggest[T any](missing func(T) bool, message string) Rule[T] {
	return Rule[T]{
		Check:    func(d T) bool { return !missing(d) },
		Severity: SeveritySuggestion,
		Message:  message,
	}
}

// Check wraps an arbitrary predicate / Enveloppe un prédicat quelconque
func Check[T any](ok func(T) bool, severity Severity, message string) Rule[T] {
	return Rule[T]{Check: ok, Severity: severity, Message: message}
}
