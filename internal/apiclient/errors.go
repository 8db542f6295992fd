package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/normalize"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/ports"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/validation"
)

// HTTPError is returned for every response with status >= 400 / Retourné pour toute réponse de statut >= 400
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string // Backend message, if any / Message du backend, s'il existe
	Body       []byte
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// IsStatus reports whether err is an HTTPError with the given status / Indique si err est une HTTPError de ce statut
func IsStatus(err error, status int) bool {
	var herr *HTTPError
	return errors.As(err, &herr) && herr.StatusCode == status
}

// backendMessage extracts message, error or detail from a JSON error body.
func backendMessage(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	for _, key := range []string{"message", "error", "detail"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
	}
	return ""
}

// statusMessages is the French copy shown when the backend gives no message.
var statusMessages = map[int]string{
	http.StatusBadRequest:          "Requête invalide. Vérifiez les données saisies.",
	http.StatusUnauthorized:        "Session expirée. Veuillez vous reconnecter.",
	http.StatusForbidden:           "Vous n'avez pas les droits nécessaires pour cette action.",
	http.StatusNotFound:            "La ressource demandée est introuvable.",
	http.StatusConflict:            "Conflit : cet élément existe déjà ou a été modifié.",
	http.StatusUnprocessableEntity: "Les données envoyées sont incorrectes.",
	http.StatusTooManyRequests:     "Trop de requêtes. Veuillez patienter avant de réessayer.",
}

const (
	serverErrorMessage  = "Erreur serveur. Veuillez réessayer plus tard."
	timeoutMessage      = "Le serveur met trop de temps à répondre. Veuillez réessayer."
	fallbackUserMessage = "Une erreur inattendue est survenue. Veuillez réessayer."
)

// UserMessage derives the French message shown to an operator / Dérive le message affiché à l'opérateur
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var verr *validation.ValidationError
	if errors.As(err, &verr) {
		return "Données invalides : " + strings.Join(verr.Errors, " ; ")
	}

	var herr *HTTPError
	if errors.As(err, &herr) {
		if herr.Message != "" {
			return herr.Message
		}
		if msg, ok := statusMessages[herr.StatusCode]; ok {
			return msg
		}
		if herr.StatusCode >= http.StatusInternalServerError {
			return serverErrorMessage
		}
		return fallbackUserMessage
	}

	switch {
	case errors.Is(err, normalize.ErrNotFound):
		return statusMessages[http.StatusNotFound]
	case errors.Is(err, normalize.ErrInvalidStructure):
		return "Réponse du serveur inattendue."
	case errors.Is(err, ports.ErrNoCredentials):
		return statusMessages[http.StatusUnauthorized]
	case errors.Is(err, context.DeadlineExceeded):
		return timeoutMessage
	default:
		return fallbackUserMessage
	}
}
