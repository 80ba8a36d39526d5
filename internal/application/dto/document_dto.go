package dto

import "github.com/shopspring/decimal"

// DiscountDTO remise de ligne ou de document.
type DiscountDTO struct {
	Mode  string          `json:"mode" validate:"omitempty,oneof=none percentage amount"`
	Value decimal.Decimal `json:"value"`
}

// CreateDocumentRequest body de POST /api/documents.
type CreateDocumentRequest struct {
	Type           string      `json:"type" validate:"required,oneof=devis facture"`
	Number         string      `json:"number,omitempty"` // optionnel ; généré si vide
	ClientName     string      `json:"client_name" validate:"required"`
	ChantierRef    string      `json:"chantier_ref,omitempty"`
	TaxApplicable  *bool       `json:"tax_applicable,omitempty"` // défaut : true
	GlobalDiscount DiscountDTO `json:"global_discount"`
}

// UpdateDocumentRequest body de PUT /api/documents/:id (en-tête uniquement,
// les lignes passent par les opérations d'édition dédiées).
type UpdateDocumentRequest struct {
	ClientName     string      `json:"client_name" validate:"required"`
	ChantierRef    string      `json:"chantier_ref,omitempty"`
	Status         string      `json:"status" validate:"omitempty,oneof=brouillon envoyé accepté payé"`
	TaxApplicable  *bool       `json:"tax_applicable,omitempty"`
	GlobalDiscount DiscountDTO `json:"global_discount"`
}

// AddLineRequest body de POST /api/documents/:id/lines.
type AddLineRequest struct {
	Kind       string `json:"kind" validate:"required,oneof=section item text header subtotal"`
	AfterIndex *int   `json:"after_index,omitempty"` // absent : ajout en fin de séquence
}

// UpdateLineRequest body de PATCH /api/documents/:id/lines/:lineID.
// Value est libre : la coercition défensive du moteur absorbe les types inattendus.
type UpdateLineRequest struct {
	Field string `json:"field" validate:"required,oneof=label kind quantity unit unit_price_ht discount_mode discount_value tax_rate"`
	Value any    `json:"value"`
}

// ReorderRequest body de POST /api/documents/:id/lines/reorder.
// Le composant de drag-and-drop ne fournit que deux indices entiers.
type ReorderRequest struct {
	SourceIndex int `json:"source_index" validate:"min=0"`
	DestIndex   int `json:"dest_index" validate:"min=0"`
}

// LineResponse une ligne dans les réponses, numérotation et totaux dérivés inclus.
type LineResponse struct {
	ID            string          `json:"id"`
	Kind          string          `json:"kind"`
	Label         string          `json:"label"`
	Quantity      decimal.Decimal `json:"quantity,omitempty"`
	Unit          string          `json:"unit,omitempty"`
	UnitPriceHT   decimal.Decimal `json:"unit_price_ht,omitempty"`
	Discount      DiscountDTO     `json:"discount"`
	TaxRate       decimal.Decimal `json:"tax_rate,omitempty"`
	TotalHT       decimal.Decimal `json:"total_ht"`
	SectionID     string          `json:"section_id,omitempty"`
	DisplayNumber string          `json:"display_number,omitempty"`
	// Subtotal rendu pour les lignes subtotal : somme des items qui précèdent
	// dans la même portée de section. Calculé à la volée.
	Subtotal *decimal.Decimal `json:"subtotal,omitempty"`
}

// TotalsResponse snapshot des totaux du document.
type TotalsResponse struct {
	TotalHT     decimal.Decimal `json:"total_ht"`
	TotalTVA    decimal.Decimal `json:"total_tva"`
	TotalTTC    decimal.Decimal `json:"total_ttc"`
	TotalRemise decimal.Decimal `json:"total_remise"`
	NetAPayer   decimal.Decimal `json:"net_a_payer"`
}

// DocumentResponse document complet pour GET /api/documents/:id.
type DocumentResponse struct {
	ID             string         `json:"id"`
	CompanyID      string         `json:"company_id"`
	Type           string         `json:"type"`
	Number         string         `json:"number"`
	ClientName     string         `json:"client_name"`
	ChantierRef    string         `json:"chantier_ref,omitempty"`
	Status         string         `json:"status"`
	Date           string         `json:"date"`
	TaxApplicable  bool           `json:"tax_applicable"`
	GlobalDiscount DiscountDTO    `json:"global_discount"`
	Lines          []LineResponse `json:"lines"`
	Totals         TotalsResponse `json:"totals"`
}

// DocumentSummary en-tête pour GET /api/documents.
type DocumentSummary struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Number     string          `json:"number"`
	ClientName string          `json:"client_name"`
	Status     string          `json:"status"`
	Date       string          `json:"date"`
	TotalTTC   decimal.Decimal `json:"total_ttc"`
}
