package domain

import "slices"

// Statut is the activation state of reference data (civilités, pays, villes, catégories) / État d'activation des référentiels
type Statut string

const (
	StatutActif   Statut = "actif"   // Visible and selectable / Visible et sélectionnable
	StatutInactif Statut = "inactif" // Hidden from users / Masqué aux utilisateurs
)

// IsValid checks if statut is valid / Vérifie si le statut est valide
func (s Statut) IsValid() bool {
	return s == StatutActif || s == StatutInactif
}

// InteresseStatut is the lifecycle state of a donation or exchange interest / Cycle de vie d'un intérêt (don ou échange)
type InteresseStatut string

const (
	InteresseEnAttente InteresseStatut = "en_attente"
	InteresseConfirme  InteresseStatut = "confirme"
	InteresseAccepte   InteresseStatut = "accepte"
	InteresseComplete  InteresseStatut = "complete"
	InteresseRefuse    InteresseStatut = "refuse"
	InteresseAnnule    InteresseStatut = "annule"
	InteresseExpire    InteresseStatut = "expire"
)

// AllInteresseStatuts returns every interest statut / Retourne tous les statuts d'intérêt
func AllInteresseStatuts() []InteresseStatut {
	return []InteresseStatut{
		InteresseEnAttente,
		InteresseConfirme,
		InteresseAccepte,
		InteresseComplete,
		InteresseRefuse,
		InteresseAnnule,
		InteresseExpire,
	}
}

// IsValid checks enum membership / Vérifie l'appartenance à l'énumération
func (s InteresseStatut) IsValid() bool {
	return slices.Contains(AllInteresseStatuts(), s)
}

// IsTerminal reports whether no further transition is expected / Indique si le statut est final
func (s InteresseStatut) IsTerminal() bool {
	switch s {
	case InteresseComplete, InteresseRefuse, InteresseAnnule, InteresseExpire:
		return true
	default:
		return false
	}
}

// interesseSideExits can be reached from any non-terminal state.
var interesseSideExits = []InteresseStatut{InteresseRefuse, InteresseAnnule, InteresseExpire}

// NextStatuts lists the transitions the backend accepts for a donation interest.
// The client does not enforce them: it documents them for operators.
// NextStatuts liste les transitions acceptées par le backend (non vérifiées côté client)
func (s InteresseStatut) NextStatuts() []InteresseStatut {
	var next []InteresseStatut
	switch s {
	case InteresseEnAttente:
		next = []InteresseStatut{InteresseConfirme}
	case InteresseConfirme:
		next = []InteresseStatut{InteresseAccepte}
	case InteresseAccepte:
		next = []InteresseStatut{InteresseComplete}
	default:
		return nil
	}
	return append(next, interesseSideExits...)
}

// EchangeNextStatuts lists transitions for an exchange interest, which has no confirmation step.
func (s InteresseStatut) EchangeNextStatuts() []InteresseStatut {
	switch s {
	case InteresseEnAttente:
		return append([]InteresseStatut{InteresseAccepte}, interesseSideExits...)
	case InteresseAccepte:
		return append([]InteresseStatut{InteresseComplete}, interesseSideExits...)
	default:
		return nil
	}
}

// CommandeStatut is the lifecycle state of an order / Cycle de vie d'une commande
type CommandeStatut string

const (
	CommandeEnAttente     CommandeStatut = "en_attente"
	CommandeConfirmee     CommandeStatut = "confirmee"
	CommandeEnPreparation CommandeStatut = "en_preparation"
	CommandeExpediee      CommandeStatut = "expediee"
	CommandeLivree        CommandeStatut = "livree"
	CommandeAnnulee       CommandeStatut = "annulee"
	CommandeRemboursee    CommandeStatut = "remboursee"
)

// AllCommandeStatuts returns every order statut in lifecycle order / Retourne tous les statuts de commande
func AllCommandeStatuts() []CommandeStatut {
	return []CommandeStatut{
		CommandeEnAttente,
		CommandeConfirmee,
		CommandeEnPreparation,
		CommandeExpediee,
		CommandeLivree,
		CommandeAnnulee,
		CommandeRemboursee,
	}
}

// IsValid checks enum membership / Vérifie l'appartenance à l'énumération
func (s CommandeStatut) IsValid() bool {
	return slices.Contains(AllCommandeStatuts(), s)
}

// IsTerminal reports whether the order is closed / Indique si la commande est clôturée
func (s CommandeStatut) IsTerminal() bool {
	return s == CommandeAnnulee || s == CommandeRemboursee
}

// NextStatuts lists the transitions the backend accepts (documentation only).
func (s CommandeStatut) NextStatuts() []CommandeStatut {
	switch s {
	case CommandeEnAttente:
		return []CommandeStatut{CommandeConfirmee, CommandeAnnulee}
	case CommandeConfirmee:
		return []CommandeStatut{CommandeEnPreparation, CommandeAnnulee}
	case CommandeEnPreparation:
		return []CommandeStatut{CommandeExpediee, CommandeAnnulee}
	case CommandeExpediee:
		return []CommandeStatut{CommandeLivree}
	case CommandeLivree:
		return []CommandeStatut{CommandeRemboursee}
	default:
		return nil
	}
}

// CommentaireStatut is the moderation state of a comment / État de modération d'un commentaire
type CommentaireStatut string

const (
	CommentaireEnAttente CommentaireStatut = "en_attente"
	CommentaireApprouve  CommentaireStatut = "approuve"
	CommentaireRejete    CommentaireStatut = "rejete"
)

// IsValid checks enum membership / Vérifie l'appartenance à l'énumération
func (s CommentaireStatut) IsValid() bool {
	return s == CommentaireEnAttente || s == CommentaireApprouve || s == CommentaireRejete
}

// CibleType is the kind of entity a comment targets / Type d'entité commentée
type CibleType string

const (
	CibleProduit  CibleType = "produit"
	CibleBoutique CibleType = "boutique"
	CibleArticle  CibleType = "article"
)

// IsValid checks enum membership / Vérifie l'appartenance à l'énumération
func (c CibleType) IsValid() bool {
	return c == CibleProduit || c == CibleBoutique || c == CibleArticle
}
