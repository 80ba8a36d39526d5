// Package document contient le moteur de calcul des devis/factures :
// total de ligne, numérotation hiérarchique, agrégation des totaux et
// opérations d'édition de la séquence de lignes. Toutes les fonctions sont
// pures et totales : pas d'effet de bord, pas d'erreur possible sur des
// entrées dégradées (les numériques malformés sont ramenés à zéro).
package document

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/renovpro/devis-api/internal/domain/entity"
)

// Round2 arrondit à 2 décimales, demi vers l'extérieur (arrondi commercial).
// Seul point d'arrondi du moteur : les sommes intermédiaires restent en
// précision complète.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineTotal total HT d'une ligne après remise de ligne.
// Vaut zéro pour toute ligne qui n'est pas un item.
func LineTotal(l entity.Line) decimal.Decimal {
	if !l.IsItem() {
		return decimal.Zero
	}
	base := l.Quantity.Mul(l.UnitPriceHT)
	return Round2(base.Sub(lineDiscountAmount(l, base)))
}

// LineDiscountAmount montant de la remise d'une ligne, en précision complète.
// Zéro pour les lignes non chiffrées ou sans remise.
func LineDiscountAmount(l entity.Line) decimal.Decimal {
	if !l.IsItem() {
		return decimal.Zero
	}
	return lineDiscountAmount(l, l.Quantity.Mul(l.UnitPriceHT))
}

func lineDiscountAmount(l entity.Line, base decimal.Decimal) decimal.Decimal {
	return DiscountAmount(l.Discount, base)
}

// DiscountAmount montant d'une remise appliquée à une base HT.
// percentage : base × value / 100 ; amount : value ; none : zéro.
func DiscountAmount(d entity.Discount, base decimal.Decimal) decimal.Decimal {
	switch d.Mode {
	case entity.DiscountPercentage:
		return base.Mul(d.Value).Div(decimal.NewFromInt(100))
	case entity.DiscountAmount:
		return d.Value
	default:
		return decimal.Zero
	}
}

// CoerceDecimal convertit une valeur de champ quelconque en décimal.
// Contrat défensif du moteur : tout numérique malformé (texte non numérique,
// NaN, infini, nil) devient zéro au lieu de se propager dans les totaux.
func CoerceDecimal(v any) decimal.Decimal {
	switch x := v.(type) {
	case decimal.Decimal:
		return x
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(x)
	case float32:
		return CoerceDecimal(float64(x))
	case int:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	case string:
		d, err := decimal.NewFromString(x)
		if err != nil {
			return decimal.Zero
		}
		return d
	case nil:
		return decimal.Zero
	default:
		return decimal.Zero
	}
}
