package entity

import "github.com/shopspring/decimal"

// LineKind nature d'une ligne de document.
type LineKind string

const (
	LineKindSection  LineKind = "section"   // titre de section, ouvre un groupe
	LineKindItem     LineKind = "item"      // ouvrage/fourniture chiffré
	LineKindText     LineKind = "text"      // texte libre, non chiffré
	LineKindHeader   LineKind = "header"    // intertitre décoratif
	LineKindSubtotal LineKind = "subtotal"  // sous-total courant, calculé à l'affichage
)

// ValidLineKind indique si k fait partie des natures connues.
func ValidLineKind(k LineKind) bool {
	switch k {
	case LineKindSection, LineKindItem, LineKindText, LineKindHeader, LineKindSubtotal:
		return true
	}
	return false
}

// DiscountMode mode d'une remise (ligne ou document).
type DiscountMode string

const (
	DiscountNone       DiscountMode = "none"
	DiscountPercentage DiscountMode = "percentage" // Value interprétée 0–100
	DiscountAmount     DiscountMode = "amount"     // Value soustraite en euros
)

// Discount remise attachée à une ligne ou au document entier.
type Discount struct {
	Mode  DiscountMode
	Value decimal.Decimal
}

// Unités de facturation usuelles du BTP.
const (
	UnitUnit        = "u"
	UnitHour        = "h"
	UnitDay         = "j"
	UnitSquareMeter = "m²"
	UnitCubicMeter  = "m³"
	UnitLinearMeter = "ml"
	UnitKilogram    = "kg"
	UnitFlatRate    = "forfait"
	UnitLot         = "lot"
)

// ValidUnit indique si u fait partie des unités connues.
func ValidUnit(u string) bool {
	switch u {
	case UnitUnit, UnitHour, UnitDay, UnitSquareMeter, UnitCubicMeter,
		UnitLinearMeter, UnitKilogram, UnitFlatRate, UnitLot:
		return true
	}
	return false
}

// Line une ligne d'un devis ou d'une facture. Les champs monétaires n'ont de
// sens que pour Kind == item ; SectionID, DisplayNumber et TotalHT sont
// dérivés et recalculés à chaque modification structurelle, jamais saisis.
type Line struct {
	ID    string
	Kind  LineKind
	Label string

	// Champs item uniquement.
	Quantity    decimal.Decimal
	Unit        string
	UnitPriceHT decimal.Decimal // peut être négatif (ligne d'avoir)
	Discount    Discount
	TaxRate     decimal.Decimal // pourcentage : 0, 5.5, 10 ou 20 par convention, non imposé

	// Champs dérivés.
	TotalHT       decimal.Decimal
	SectionID     string // id de la section englobante, "" hors section
	DisplayNumber string // "1", "1.2", "" pour les lignes décoratives
}

// IsItem raccourci pour les agrégations monétaires.
func (l Line) IsItem() bool { return l.Kind == LineKindItem }
