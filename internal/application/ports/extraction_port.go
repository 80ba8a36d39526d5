package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ExtractionMode choisit le prompt envoyé au modèle.
type ExtractionMode string

const (
	// ModeGenerate : description libre d'un projet, le modèle propose des lignes.
	ModeGenerate ExtractionMode = "generate"
	// ModeParse : devis existant collé, le modèle restitue les lignes sans en inventer.
	ModeParse ExtractionMode = "parse"
)

// ExtractedEntry une ligne candidate renvoyée par le service d'extraction.
// Les tags JSON sont le contrat de sortie imposé au modèle.
type ExtractedEntry struct {
	Type           string          `json:"type"` // "section" ou "ligne"
	Designation    string          `json:"designation"`
	Quantite       decimal.Decimal `json:"quantite,omitempty"`
	Unite          string          `json:"unite,omitempty"`
	PrixUnitaireHT decimal.Decimal `json:"prix_unitaire_ht,omitempty"`
}

// ExtractionService port de sortie vers le service d'extraction de lignes
// (LLM). Tout adaptateur (Anthropic, Gemini, mock) doit implémenter ce
// contrat ; la couche application ne connaît que lui. Le contexte doit porter
// un timeout : l'appelant enveloppe chaque appel dans une politique de retry.
type ExtractionService interface {
	ExtractLines(ctx context.Context, text string, mode ExtractionMode) ([]ExtractedEntry, error)
}

// ErrorKind catégorie d'échec d'un appel d'extraction, pour le message
// utilisateur et les décisions de retry.
type ErrorKind string

const (
	ErrKindTimeout      ErrorKind = "TIMEOUT"
	ErrKindNetwork      ErrorKind = "NETWORK"
	ErrKindMalformed    ErrorKind = "MALFORMED_RESPONSE"
	ErrKindRateLimited  ErrorKind = "RATE_LIMITED"
	ErrKindUnauthorized ErrorKind = "UNAUTHORIZED"
	ErrKindGeneric      ErrorKind = "GENERIC"
)

// ExtractionError échec classifié d'un appel d'extraction.
type ExtractionError struct {
	Kind ErrorKind
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction (%s): %v", e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// NewExtractionError enveloppe err avec sa catégorie.
func NewExtractionError(kind ErrorKind, err error) *ExtractionError {
	return &ExtractionError{Kind: kind, Err: err}
}

// KindOf renvoie la catégorie d'une erreur d'extraction, ErrKindGeneric si
// l'erreur n'est pas classifiée.
func KindOf(err error) ErrorKind {
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return ErrKindGeneric
}
