package dto

// StartImportRequest body de POST /api/documents/:id/import.
type StartImportRequest struct {
	Text string `json:"text" validate:"required"`
}

// EditCandidateRequest body de PATCH /api/import/:sessionID/candidates/:lineID.
type EditCandidateRequest struct {
	Field string `json:"field" validate:"required,oneof=label kind quantity unit unit_price_ht discount_mode discount_value tax_rate"`
	Value any    `json:"value"`
}

// CandidateLineResponse ligne candidate en prévisualisation.
type CandidateLineResponse struct {
	LineResponse
	Selected bool `json:"selected"`
}

// ImportSessionResponse état d'une session d'import pour le polling du client.
type ImportSessionResponse struct {
	ID             string                  `json:"id"`
	DocumentID     string                  `json:"document_id"`
	State          string                  `json:"state"` // idle, generating, preview
	QuoteMode      bool                    `json:"quote_mode"`
	EstimatedLines int                     `json:"estimated_lines,omitempty"`
	ChunksDone     int                     `json:"chunks_done"`
	ChunksTotal    int                     `json:"chunks_total"`
	Candidates     []CandidateLineResponse `json:"candidates"`
	Warning        string                  `json:"warning,omitempty"`
	Error          string                  `json:"error,omitempty"`
}
