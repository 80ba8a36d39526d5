package ai

import "github.com/renovpro/devis-api/internal/application/ports"

// Prompts système du service d'extraction. Deux variantes : génération de
// lignes depuis une description de projet, ou restitution fidèle d'un devis
// existant collé. Le format de sortie JSON est identique dans les deux cas.
const (
	outputContract = `Réponds UNIQUEMENT avec un objet JSON valide (sans markdown, sans bloc de code ` + "```json" + `) de structure exacte :
{
  "lignes": [
    {"type": "section", "designation": "<titre de la section>"},
    {"type": "ligne", "designation": "<descriptif de l'ouvrage>", "quantite": <nombre>, "unite": "<u|h|j|m²|m³|ml|kg|forfait|lot>", "prix_unitaire_ht": <nombre>}
  ]
}

Règles :
- type: "section" pour un titre de groupe, "ligne" pour un ouvrage chiffré.
- quantite, prix_unitaire_ht : nombres sans symbole monétaire ni séparateur de milliers.
- unite : une des valeurs listées ; "u" à défaut.
- Aucun texte hors du JSON. Seulement l'objet JSON.`

	generatePrompt = `Tu es un artisan expérimenté en rénovation intérieure qui prépare ses devis.
À partir de la description de projet fournie, propose les lignes du devis : sections par corps d'état, ouvrages chiffrés avec quantités, unités et prix unitaires HT réalistes pour le marché français.
` + outputContract

	parsePrompt = `Tu es un assistant de saisie qui restitue un devis existant.
Le texte fourni est un devis déjà rédigé : restitue fidèlement chaque section et chaque ligne chiffrée, sans rien inventer, sans rien omettre, sans reformuler les désignations.
` + outputContract
)

// systemPromptFor choisit le prompt selon le mode détecté par l'heuristique.
func systemPromptFor(mode ports.ExtractionMode) string {
	if mode == ports.ModeParse {
		return parsePrompt
	}
	return generatePrompt
}

// extractionPayload enveloppe JSON attendue du modèle.
type extractionPayload struct {
	Lignes []ports.ExtractedEntry `json:"lignes"`
}
