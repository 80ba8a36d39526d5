package importer

import (
	"github.com/renovpro/devis-api/internal/application/ports"
	"github.com/renovpro/devis-api/pkg/retry"
)

// classify ramène un échec d'extraction à sa catégorie. Un timeout de la
// politique de retry prime sur la classification portée par l'adaptateur.
func classify(err error) ports.ErrorKind {
	if retry.IsTimeout(err) {
		return ports.ErrKindTimeout
	}
	return ports.KindOf(err)
}

// userMessage message utilisateur unique par catégorie d'échec. Jamais de
// stack trace ni d'erreur brute côté client.
func userMessage(kind ports.ErrorKind) string {
	switch kind {
	case ports.ErrKindTimeout:
		return "Le service d'extraction n'a pas répondu à temps. Réessayez dans un instant."
	case ports.ErrKindNetwork:
		return "Connexion au service d'extraction impossible. Vérifiez votre réseau."
	case ports.ErrKindMalformed:
		return "La réponse du service d'extraction est illisible. Réessayez."
	case ports.ErrKindRateLimited:
		return "Le service d'extraction est saturé. Patientez quelques instants avant de réessayer."
	case ports.ErrKindUnauthorized:
		return "Clé d'API du service d'extraction invalide ou manquante."
	default:
		return "L'extraction a échoué. Réessayez."
	}
}

// Messages d'avertissement sur le ratio extrait/estimé et l'extraction vide.
const (
	warnFarFewer = "Beaucoup moins de lignes extraites qu'attendu : pensez à regénérer."
	warnMissing  = "Certaines lignes semblent manquantes : vérifiez la prévisualisation."
	msgNoLines   = "Aucune ligne extraite. Vérifiez le format du texte saisi."
)

// Seuils d'avertissement sur le ratio lignes extraites / lignes estimées.
const (
	ratioFarFewer = 0.5
	ratioMissing  = 0.8
)

// RatioWarning message d'avertissement quand l'extraction d'un devis collé
// rend nettement moins de lignes que l'estimation heuristique. Vide hors mode
// devis (l'estimation n'a pas de sens sur une description libre) ou quand le
// ratio est satisfaisant.
func RatioWarning(extracted, estimated int, quoteMode bool) string {
	if !quoteMode || estimated <= 0 {
		return ""
	}
	switch ratio := float64(extracted) / float64(estimated); {
	case ratio < ratioFarFewer:
		return warnFarFewer
	case ratio < ratioMissing:
		return warnMissing
	default:
		return ""
	}
}
