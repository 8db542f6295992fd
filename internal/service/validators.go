package service

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/domain"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/ports"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/validation"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	codeRe = regexp.MustCompile(`^[A-Z0-9_]{1,10}$`)
	isoRe  = regexp.MustCompile(`^[A-Z]{2}$`)
	slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	telRe  = regexp.MustCompile(`^\+[0-9]{1,4}$`)
	cpRe   = regexp.MustCompile(`^[0-9A-Za-z -]{3,10}$`)
)

// newValidator applies the shared strictness and metrics settings.
func newValidator[T any](entity string, opts Options, rules []validation.Rule[T], checks ...validation.SubCheck[T]) *validation.Validator[T] {
	v := &validation.Validator[T]{
		Entity:    entity,
		Rules:     rules,
		SubChecks: checks,
		Strict:    opts.StrictSubchecks,
	}
	if opts.Metrics != nil {
		v.Recorder = opts.Metrics
	}
	return v
}

// validate runs v and turns blocking findings into a *validation.ValidationError.
func validate[T any](ctx context.Context, v *validation.Validator[T], data T) error {
	res := v.Validate(ctx, data)
	if err := res.Err(); err != nil {
		slog.Info("service: payload rejected before sending", "entity", v.Entity, "errors", len(res.Errors))
		return err
	}
	return nil
}

// statutRule rejects a statut outside actif/inactif.
func statutRule[T any](get func(T) string) validation.Rule[T] {
	return validation.OneOf("statut", get, func(s string) bool { return domain.Statut(s).IsValid() })
}

// ptr returns *p or the zero value / Retourne *p ou la valeur zéro
func ptr[V any](p *V) V {
	var zero V
	if p == nil {
		return zero
	}
	return *p
}

// presentNonBlank fails when a field sent in a partial update is blank.
func presentNonBlank[T any](field string, get func(T) *string) validation.Rule[T] {
	return validation.Check(func(d T) bool {
		v := get(d)
		return v == nil || strings.TrimSpace(*v) != ""
	}, validation.SeverityError, "le champ "+field+" ne peut pas être vidé")
}

// checkAvailable asks a uniqueness or stock endpoint / Interroge un endpoint de disponibilité
func checkAvailable(ctx context.Context, http ports.HTTPClient, path string, query url.Values) (bool, error) {
	resp, err := http.Get(ctx, path, query)
	if err != nil {
		return false, err
	}
	return availability(resp.Body)
}

// availabilityOutcome reports a taken value as an error and exposes the flag as an extra.
func availabilityOutcome(extra string, available bool, message string) validation.Outcome {
	out := validation.Outcome{Extras: map[string]any{extra: available}}
	if !available {
		out.Findings = []validation.Finding{{Severity: validation.SeverityError, Message: message}}
	}
	return out
}

// permissive is the fallback of availability sub-checks.
func permissive(extra string) validation.Outcome {
	return validation.Outcome{Extras: map[string]any{extra: true}}
}

// Slugify lowercases s, strips accents and joins words with '-' / Construit un slug
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
