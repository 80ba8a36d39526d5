package document

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/renovpro/devis-api/internal/domain/entity"
)

// Champs modifiables d'une ligne (UpdateLineField / édition de candidats).
const (
	FieldLabel         = "label"
	FieldKind          = "kind"
	FieldQuantity      = "quantity"
	FieldUnit          = "unit"
	FieldUnitPriceHT   = "unit_price_ht"
	FieldDiscountMode  = "discount_mode"
	FieldDiscountValue = "discount_value"
	FieldTaxRate       = "tax_rate"
)

// Taux de TVA par défaut des travaux de rénovation (taux intermédiaire).
var defaultTaxRate = decimal.NewFromFloat(10)

// NewLine construit une ligne avec les valeurs par défaut de sa nature :
// un item démarre à quantité 1, unité "u", prix 0, sans remise ; une section
// reçoit un libellé provisoire.
func NewLine(kind entity.LineKind) entity.Line {
	l := entity.Line{
		ID:       uuid.New().String(),
		Kind:     kind,
		Discount: entity.Discount{Mode: entity.DiscountNone},
	}
	switch kind {
	case entity.LineKindItem:
		l.Quantity = decimal.NewFromInt(1)
		l.Unit = entity.UnitUnit
		l.TaxRate = defaultTaxRate
	case entity.LineKindSection:
		l.Label = "Nouvelle section"
	}
	return l
}

// AddLine insère une nouvelle ligne de la nature demandée après afterIndex
// (ou en fin de séquence si afterIndex < 0 ou hors bornes) et renumérote.
// Renvoie la séquence renumérotée et la ligne créée.
func AddLine(lines []entity.Line, kind entity.LineKind, afterIndex int) ([]entity.Line, entity.Line) {
	nl := NewLine(kind)

	pos := len(lines)
	if afterIndex >= 0 && afterIndex < len(lines) {
		pos = afterIndex + 1
	}
	out := make([]entity.Line, 0, len(lines)+1)
	out = append(out, lines[:pos]...)
	out = append(out, nl)
	out = append(out, lines[pos:]...)

	out = Renumber(out)
	return out, out[pos]
}

// UpdateLineField modifie un champ d'une ligne identifiée par id. Les champs
// monétaires (quantité, prix unitaire, remise) déclenchent le recalcul du
// TotalHT de la ligne. Id inconnu : aucune mutation (idempotent). La séquence
// renvoyée est toujours renumérotée, un changement de nature pouvant déplacer
// des frontières de section.
func UpdateLineField(lines []entity.Line, id, field string, value any) []entity.Line {
	out := make([]entity.Line, len(lines))
	copy(out, lines)

	for i := range out {
		if out[i].ID != id {
			continue
		}
		l := &out[i]
		switch field {
		case FieldLabel:
			l.Label, _ = value.(string)
		case FieldKind:
			if k, ok := value.(string); ok && entity.ValidLineKind(entity.LineKind(k)) {
				l.Kind = entity.LineKind(k)
			}
		case FieldQuantity:
			l.Quantity = CoerceDecimal(value)
		case FieldUnit:
			if u, ok := value.(string); ok && entity.ValidUnit(u) {
				l.Unit = u
			}
		case FieldUnitPriceHT:
			l.UnitPriceHT = CoerceDecimal(value)
		case FieldDiscountMode:
			mode, _ := value.(string)
			switch entity.DiscountMode(mode) {
			case entity.DiscountPercentage:
				l.Discount.Mode = entity.DiscountPercentage
			case entity.DiscountAmount:
				l.Discount.Mode = entity.DiscountAmount
			default:
				l.Discount.Mode = entity.DiscountNone
			}
		case FieldDiscountValue:
			l.Discount.Value = CoerceDecimal(value)
		case FieldTaxRate:
			l.TaxRate = CoerceDecimal(value)
		}
		l.TotalHT = LineTotal(*l)
		break
	}
	return Renumber(out)
}

// DeleteLine supprime la ligne id. Si c'est une section, toutes les lignes
// qui lui sont rattachées (SectionID == id) sont supprimées en cascade.
// Id inconnu : aucune mutation.
func DeleteLine(lines []entity.Line, id string) []entity.Line {
	var target *entity.Line
	for i := range lines {
		if lines[i].ID == id {
			target = &lines[i]
			break
		}
	}
	if target == nil {
		return Renumber(lines)
	}

	cascade := target.Kind == entity.LineKindSection
	out := make([]entity.Line, 0, len(lines))
	for _, l := range lines {
		if l.ID == id {
			continue
		}
		if cascade && l.SectionID == id {
			continue
		}
		out = append(out, l)
	}
	return Renumber(out)
}

// ReorderLines déplace une ligne de sourceIndex vers destIndex, sémantique
// glisser-déposer : retrait puis réinsertion, pas d'échange. Aucune garde ne
// retient un item dans sa section d'origine : son SectionID est simplement
// recalculé d'après sa nouvelle position, la structure découlant de l'ordre.
// Indices hors bornes : aucune mutation.
func ReorderLines(lines []entity.Line, sourceIndex, destIndex int) []entity.Line {
	n := len(lines)
	if sourceIndex < 0 || sourceIndex >= n || destIndex < 0 || destIndex >= n {
		return Renumber(lines)
	}
	out := make([]entity.Line, 0, n)
	out = append(out, lines[:sourceIndex]...)
	out = append(out, lines[sourceIndex+1:]...)

	moved := lines[sourceIndex]
	out = append(out[:destIndex], append([]entity.Line{moved}, out[destIndex:]...)...)
	return Renumber(out)
}
