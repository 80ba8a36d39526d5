package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentType devis ou facture.
type DocumentType string

const (
	DocumentTypeDevis   DocumentType = "devis"
	DocumentTypeFacture DocumentType = "facture"
)

// Statuts d'un document.
const (
	DocumentStatusDraft    = "brouillon"
	DocumentStatusSent     = "envoyé"
	DocumentStatusAccepted = "accepté"
	DocumentStatusPaid     = "payé"
)

// TotalsSnapshot totaux du document, arrondis à 2 décimales (arrondi commercial,
// demi vers l'extérieur) au seul moment du calcul final. Toujours recalculé
// depuis la séquence de lignes, jamais source de vérité.
type TotalsSnapshot struct {
	TotalHT     decimal.Decimal
	TotalTVA    decimal.Decimal
	TotalTTC    decimal.Decimal
	TotalRemise decimal.Decimal // remises de ligne + remise globale
	NetAPayer   decimal.Decimal
}

// Document en-tête d'un devis ou d'une facture et sa séquence ordonnée de
// lignes. L'ordre d'insertion est porteur de sens : il définit les sections
// et la numérotation.
type Document struct {
	ID             string
	CompanyID      string
	Type           DocumentType
	Number         string
	ClientName     string
	ChantierRef    string // référence chantier libre, optionnelle
	Status         string
	Date           time.Time
	GlobalDiscount Discount
	TaxApplicable  bool // false : TVA non applicable (art. 293 B du CGI)
	Lines          []Line
	Totals         TotalsSnapshot
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
