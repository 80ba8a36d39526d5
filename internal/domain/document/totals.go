package document

import (
	"github.com/shopspring/decimal"

	"github.com/renovpro/devis-api/internal/domain/entity"
)

var cent = decimal.NewFromInt(100)

// ComputeTotals agrège les totaux du document depuis la séquence complète de
// lignes, la remise globale et l'applicabilité de la TVA. Les sommes restent
// en précision complète ; l'arrondi à 2 décimales n'est appliqué qu'une seule
// fois, sur chaque champ du snapshot. Appeler deux fois avec les mêmes
// entrées rend un résultat identique au bit près.
func ComputeTotals(lines []entity.Line, globalDiscount entity.Discount, taxApplicable bool) entity.TotalsSnapshot {
	var rawHT, rawTVA, lineDiscounts decimal.Decimal
	for _, l := range lines {
		if !l.IsItem() {
			continue
		}
		total := LineTotal(l)
		rawHT = rawHT.Add(total)
		if taxApplicable {
			rawTVA = rawTVA.Add(total.Mul(l.TaxRate).Div(cent))
		}
		lineDiscounts = lineDiscounts.Add(LineDiscountAmount(l))
	}

	globalAmount := DiscountAmount(globalDiscount, rawHT)

	totalHT := Round2(rawHT.Sub(globalAmount))
	totalTTC := Round2(totalHT.Add(rawTVA))
	return entity.TotalsSnapshot{
		TotalHT:     totalHT,
		TotalTVA:    Round2(rawTVA),
		TotalTTC:    totalTTC,
		TotalRemise: Round2(lineDiscounts.Add(globalAmount)),
		// Une retenue de garantie éventuelle est appliquée par l'appelant.
		NetAPayer: totalTTC,
	}
}

// SectionSubtotal somme des totaux d'items rattachés à une section donnée.
// Affichage uniquement : indépendant des totaux du document.
func SectionSubtotal(lines []entity.Line, sectionID string) decimal.Decimal {
	var sum decimal.Decimal
	for _, l := range lines {
		if l.IsItem() && l.SectionID == sectionID {
			sum = sum.Add(LineTotal(l))
		}
	}
	return Round2(sum)
}

// RunningSubtotal "sous-total à ce stade" d'une ligne subtotal : somme des
// items qui la précèdent dans la même portée de section (ou au premier niveau
// si elle est hors section). Calculé à l'affichage, jamais stocké.
func RunningSubtotal(lines []entity.Line, index int) decimal.Decimal {
	if index < 0 || index >= len(lines) {
		return decimal.Zero
	}
	scope := lines[index].SectionID
	var sum decimal.Decimal
	for _, l := range lines[:index] {
		if l.IsItem() && l.SectionID == scope {
			sum = sum.Add(LineTotal(l))
		}
	}
	return Round2(sum)
}
