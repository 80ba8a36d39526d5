package importer

import (
	"regexp"
	"strings"
	"unicode"
)

// Politique de découpage d'un devis collé volumineux.
const (
	// ChunkLineThreshold : au-delà de cette estimation de lignes, on découpe.
	ChunkLineThreshold = 20
	// FallbackTextLines : si moins de 2 chunks structurels et plus de lignes
	// que ce seuil, repli sur des chunks de taille fixe.
	FallbackTextLines = 30
	// FallbackChunkSize taille des chunks de repli.
	FallbackChunkSize = 25
)

// reNumberedHeading "1. PEINTURE", "2) Salle de bain", "3 - Électricité"...
var reNumberedHeading = regexp.MustCompile(`^\s*\d+\s*([.)]|[-–])?\s+\p{Lu}`)

// Marqueurs de fin de bloc, comparés sur texte replié.
var headingMarkers = []string{"total", "sous-total", "recapitulatif"}

// SplitChunks découpe le texte aux frontières ressemblant à des titres :
// lignes tout en capitales, numérotation en tête suivie d'une capitale, ou
// marqueurs TOTAL / SOUS-TOTAL / RÉCAPITULATIF. Si moins de deux chunks
// structurels sont trouvés et que le texte dépasse FallbackTextLines lignes,
// repli sur des chunks fixes de FallbackChunkSize lignes ; sinon le texte
// entier forme un seul chunk.
func SplitChunks(text string) []string {
	lines := strings.Split(text, "\n")

	var chunks []string
	var current []string
	flush := func() {
		if block := strings.TrimSpace(strings.Join(current, "\n")); block != "" {
			chunks = append(chunks, block)
		}
		current = current[:0]
	}
	for _, line := range lines {
		if isHeadingLine(line) && len(current) > 0 {
			flush()
		}
		current = append(current, line)
	}
	flush()

	if len(chunks) >= 2 {
		return chunks
	}
	if len(lines) > FallbackTextLines {
		return fixedChunks(lines, FallbackChunkSize)
	}
	return []string{text}
}

// isHeadingLine reconnaît une frontière de section probable.
func isHeadingLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if reNumberedHeading.MatchString(trimmed) {
		return true
	}
	folded := fold(trimmed)
	for _, m := range headingMarkers {
		if strings.HasPrefix(folded, m) {
			return true
		}
	}
	return isAllCaps(trimmed)
}

// isAllCaps : au moins trois lettres, toutes en capitales.
func isAllCaps(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters >= 3
}

func fixedChunks(lines []string, size int) []string {
	var chunks []string
	for start := 0; start < len(lines); start += size {
		end := start + size
		if end > len(lines) {
			end = len(lines)
		}
		if block := strings.TrimSpace(strings.Join(lines[start:end], "\n")); block != "" {
			chunks = append(chunks, block)
		}
	}
	return chunks
}
