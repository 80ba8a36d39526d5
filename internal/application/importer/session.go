package importer

import (
	"github.com/renovpro/devis-api/internal/application/dto"
	"github.com/renovpro/devis-api/internal/application/editor"
	"github.com/renovpro/devis-api/internal/domain/entity"
)

// State états de la machine d'une session d'import.
type State string

const (
	StateIdle       State = "idle"       // prêt à (re)lancer, message d'erreur éventuel
	StateGenerating State = "generating" // extraction en cours, chunks séquentiels
	StatePreview    State = "preview"    // candidats prêts à relire/éditer
)

// CandidateLine ligne candidate en zone de transit : une ligne complète plus
// l'indicateur de sélection. N'existe que pendant la prévisualisation ;
// convertie en ligne définitive (Selected retiré) à la confirmation.
type CandidateLine struct {
	entity.Line
	Selected bool
}

// session état interne d'un import. Propriété exclusive du cas d'usage ;
// l'éditeur de lignes n'y accède jamais, sauf au moment du Confirm.
type session struct {
	id        string
	companyID string
	docID     string
	prompt    string

	state          State
	quoteMode      bool
	estimatedLines int
	chunksDone     int
	chunksTotal    int
	candidates     []CandidateLine
	warning        string
	errMsg         string

	cancelled bool
	done      chan struct{} // fermé quand la génération se termine
}

// snapshot projette l'état de session en réponse API (appelé sous mutex).
func (s *session) snapshot() *dto.ImportSessionResponse {
	resp := &dto.ImportSessionResponse{
		ID:             s.id,
		DocumentID:     s.docID,
		State:          string(s.state),
		QuoteMode:      s.quoteMode,
		EstimatedLines: s.estimatedLines,
		ChunksDone:     s.chunksDone,
		ChunksTotal:    s.chunksTotal,
		Candidates:     make([]dto.CandidateLineResponse, 0, len(s.candidates)),
		Warning:        s.warning,
		Error:          s.errMsg,
	}
	for _, c := range s.candidates {
		resp.Candidates = append(resp.Candidates, dto.CandidateLineResponse{
			LineResponse: editor.ToLineResponse(c.Line),
			Selected:     c.Selected,
		})
	}
	return resp
}
