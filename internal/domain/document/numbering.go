package document

import (
	"fmt"
	"strconv"

	"github.com/renovpro/devis-api/internal/domain/entity"
)

// Renumber recalcule DisplayNumber et SectionID de toutes les lignes en une
// seule passe gauche-droite. Fonction pure : la séquence d'entrée n'est pas
// modifiée, une copie renumérotée est renvoyée.
//
// Règles :
//   - chaque section incrémente le compteur de sections et remet le compteur
//     d'items à zéro ; elle porte "N" et n'appartient à aucune section ;
//   - un item sous une section porte "N.M" ; un item avant toute section porte
//     son propre rang au premier niveau ("1", "2", ...), compteur indépendant ;
//   - text, header et subtotal ne sont jamais numérotés et n'incrémentent
//     aucun compteur : marqueurs purement décoratifs ;
//   - SectionID pointe vers la section ouverte la plus proche en amont,
//     "" avant toute section. Position avant pointeur : la structure découle
//     entièrement de l'ordre des lignes.
func Renumber(lines []entity.Line) []entity.Line {
	out := make([]entity.Line, len(lines))
	copy(out, lines)

	sectionCounter := 0
	itemCounter := 0
	topLevelCounter := 0
	currentSectionID := ""

	for i := range out {
		l := &out[i]
		switch {
		case l.Kind == entity.LineKindSection:
			sectionCounter++
			itemCounter = 0
			l.DisplayNumber = strconv.Itoa(sectionCounter)
			l.SectionID = ""
			currentSectionID = l.ID

		case currentSectionID != "":
			if l.Kind == entity.LineKindItem {
				itemCounter++
				l.DisplayNumber = fmt.Sprintf("%d.%d", sectionCounter, itemCounter)
			} else {
				l.DisplayNumber = ""
			}
			l.SectionID = currentSectionID

		default: // aucune section encore ouverte
			if l.Kind == entity.LineKindItem {
				topLevelCounter++
				l.DisplayNumber = strconv.Itoa(topLevelCounter)
			} else {
				l.DisplayNumber = ""
			}
			l.SectionID = ""
		}
	}
	return out
}
