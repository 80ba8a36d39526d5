package ai

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/renovpro/devis-api/internal/application/ports"
)

// jsonBlockRe capture le premier objet JSON d'un texte, du premier '{' au
// dernier '}', même si le modèle l'entoure de texte.
var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

// extractJSON extrait le premier objet JSON bien formé d'un texte libre.
// Deux étapes : retirer les blocs de code markdown (```json … ``` ou
// ``` … ```), puis capturer le premier bloc { … } par regex.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```"); idx != -1 {
		// Retirer la ligne d'ouverture (```json ou ```)
		after := text[idx+3:]
		if nl := strings.Index(after, "\n"); nl != -1 {
			after = after[nl+1:]
		}
		// Retirer la clôture ```
		if end := strings.LastIndex(after, "```"); end != -1 {
			after = after[:end]
		}
		text = strings.TrimSpace(after)
	}

	if strings.HasPrefix(text, "{") {
		return text
	}
	return strings.TrimSpace(jsonBlockRe.FindString(text))
}

// kindForStatus classe un statut HTTP d'API LLM en catégorie d'erreur
// d'extraction.
func kindForStatus(status int) ports.ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ports.ErrKindUnauthorized
	case status == http.StatusTooManyRequests:
		return ports.ErrKindRateLimited
	case status >= 500:
		return ports.ErrKindNetwork
	default:
		return ports.ErrKindGeneric
	}
}
