package importer

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fold normalise un texte pour les heuristiques : minuscules, accents
// supprimés, compatibilité Unicode ("m²" -> "m2", "RÉCAPITULATIF" ->
// "recapitulatif"). NFKD décompose, les marques combinantes sont retirées.
func fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFKC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Motifs de détection d'un devis existant, appliqués au texte replié.
var (
	reCurrency  = regexp.MustCompile(`\d[\d\s]*[.,]?\d*\s*(€|euros?\b)`)
	reHours     = regexp.MustCompile(`\b\d+([.,]\d+)?\s*h\b`)
	reAreaVol   = regexp.MustCompile(`\b\d+([.,]\d+)?\s*(m2|m3|ml)\b`)
	reDottedNum = regexp.MustCompile(`(?m)^\s*\d+\.\d+`)
	reTotalHT   = regexp.MustCompile(`total[^\n]{0,30}\b(ht|ttc)\b`)
	reUnitPrice = regexp.MustCompile(`\b(p\.?u\.?|prix\s+unitaire|€\s*/\s*(m2|m3|ml|h|u)\b)`)
)

// LooksLikeExistingQuote décide si le texte collé ressemble à un devis
// existant (mode restitution) plutôt qu'à une description de projet (mode
// génération). Vote souple : au moins deux motifs sur six. Purement indicatif,
// ne bloque jamais l'opération — seul le prompt et le message de progression
// en dépendent.
func LooksLikeExistingQuote(text string) bool {
	folded := fold(text)
	votes := 0
	for _, re := range []*regexp.Regexp{reCurrency, reHours, reAreaVol, reDottedNum, reTotalHT, reUnitPrice} {
		if re.MatchString(folded) {
			votes++
			if votes >= 2 {
				return true
			}
		}
	}
	return false
}

// Motifs "ligne chiffrable" pour l'estimation du nombre de lignes.
var (
	reLinePrice = regexp.MustCompile(`\d[\d\s]*[.,]?\d*\s*(€|euros?\b)`)
	reLineQty   = regexp.MustCompile(`\b\d+([.,]\d+)?\s*(u|h|j|m2|m3|ml|kg|forfait|lot)\b`)
	reLineNum   = regexp.MustCompile(`^\s*\d+([.)]|\.\d+)`)
)

// EstimateLineCount estime le nombre de lignes que l'extraction devrait
// produire : lignes non vides portant un prix, une quantité ou une
// numérotation, avec un plancher à 60 % des lignes non vides.
func EstimateLineCount(text string) int {
	nonBlank := 0
	matched := 0
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		nonBlank++
		folded := fold(line)
		if reLinePrice.MatchString(folded) || reLineQty.MatchString(folded) || reLineNum.MatchString(folded) {
			matched++
		}
	}
	if floor := nonBlank * 6 / 10; matched < floor {
		return floor
	}
	return matched
}
