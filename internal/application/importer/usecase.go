// Package importer réconcilie un texte libre (description de projet ou devis
// existant collé) avec la séquence de lignes d'un document : découpage
// éventuel en chunks, extraction par un service LLM avec retry et timeout,
// accumulation des candidats dans une zone de transit relisible, puis fusion
// dans le document sur confirmation explicite de l'utilisateur.
package importer

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/renovpro/devis-api/internal/application/dto"
	"github.com/renovpro/devis-api/internal/application/editor"
	"github.com/renovpro/devis-api/internal/application/ports"
	"github.com/renovpro/devis-api/internal/domain"
	"github.com/renovpro/devis-api/internal/domain/document"
	"github.com/renovpro/devis-api/internal/domain/entity"
	"github.com/renovpro/devis-api/pkg/logger"
	"github.com/renovpro/devis-api/pkg/retry"
)

// UseCase orchestre les sessions d'import assisté.
type UseCase struct {
	extractor ports.ExtractionService
	editorUC  *editor.UseCase
	log       *logger.Logger
	policy    retry.Policy

	mu       sync.Mutex
	sessions map[string]*session
}

// NewUseCase construit le cas d'usage. policy s'applique à chaque appel
// d'extraction (par chunk) : tentatives avec backoff exponentiel, timeout
// par tentative.
func NewUseCase(extractor ports.ExtractionService, editorUC *editor.UseCase, log *logger.Logger, policy retry.Policy) *UseCase {
	return &UseCase{
		extractor: extractor,
		editorUC:  editorUC,
		log:       log,
		policy:    policy,
		sessions:  make(map[string]*session),
	}
}

// Start ouvre une session et lance la génération en arrière-plan.
// Le client suit la progression par polling (Get) ou attente (WaitForPreview).
func (uc *UseCase) Start(ctx context.Context, companyID, docID, text string) (*dto.ImportSessionResponse, error) {
	if text == "" {
		return nil, domain.ErrInvalidInput
	}
	// Contrôle d'accès au document avant d'ouvrir la session.
	if _, err := uc.editorUC.GetDocument(ctx, companyID, docID); err != nil {
		return nil, err
	}

	s := &session{
		id:        uuid.New().String(),
		companyID: companyID,
		docID:     docID,
		prompt:    text,
		state:     StateGenerating,
		done:      make(chan struct{}),
	}
	uc.mu.Lock()
	uc.sessions[s.id] = s
	snap := s.snapshot()
	uc.mu.Unlock()

	go uc.run(s)
	return snap, nil
}

// run exécute l'extraction : détection du mode, découpage, appels séquentiels
// chunk par chunk (le chunk N+1 n'est lancé qu'une fois le chunk N résolu ou
// ses tentatives épuisées), accumulation dans l'ordre des chunks.
// Une session annulée entre-temps voit ses résultats tardifs jetés.
func (uc *UseCase) run(s *session) {
	defer close(s.done)
	ctx := context.Background()

	quoteMode := LooksLikeExistingQuote(s.prompt)
	estimated := EstimateLineCount(s.prompt)
	mode := ports.ModeGenerate
	if quoteMode {
		mode = ports.ModeParse
	}

	chunks := []string{s.prompt}
	if quoteMode && estimated > ChunkLineThreshold {
		chunks = SplitChunks(s.prompt)
	}

	uc.mu.Lock()
	s.quoteMode = quoteMode
	s.estimatedLines = estimated
	s.chunksTotal = len(chunks)
	uc.mu.Unlock()

	singleCall := len(chunks) == 1
	for i, chunk := range chunks {
		if uc.isCancelled(s) {
			return
		}

		var entries []ports.ExtractedEntry
		err := uc.policy.Do(ctx, func(ctx context.Context) error {
			var callErr error
			entries, callErr = uc.extractor.ExtractLines(ctx, chunk, mode)
			return callErr
		})
		if err != nil {
			kind := classify(err)
			if singleCall {
				// Appel unique : l'échec remonte à l'utilisateur, retour à Idle.
				uc.finish(s, StateIdle, userMessage(kind), "")
				return
			}
			// Échec partiel : le chunk ne produit rien, on continue.
			uc.log.Warn().Err(err).Str("session_id", s.id).Int("chunk", i+1).
				Str("kind", string(kind)).Msg("chunk d'extraction abandonné après retries")
			uc.advanceChunk(s, nil)
			continue
		}
		uc.advanceChunk(s, candidatesFromEntries(entries))
	}

	if uc.isCancelled(s) {
		return
	}

	uc.mu.Lock()
	extracted := len(s.candidates)
	uc.mu.Unlock()
	if extracted == 0 {
		uc.finish(s, StateIdle, msgNoLines, "")
		return
	}

	uc.finish(s, StatePreview, "", RatioWarning(extracted, estimated, quoteMode))
}

func (uc *UseCase) isCancelled(s *session) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return s.cancelled
}

// advanceChunk accumule les candidats d'un chunk (dans l'ordre des chunks) et
// incrémente la progression.
func (uc *UseCase) advanceChunk(s *session, candidates []CandidateLine) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if s.cancelled {
		return
	}
	s.candidates = append(s.candidates, candidates...)
	s.chunksDone++
}

func (uc *UseCase) finish(s *session, state State, errMsg, warning string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if s.cancelled {
		return
	}
	s.state = state
	s.errMsg = errMsg
	s.warning = warning
}

// candidatesFromEntries convertit les entrées du service d'extraction en
// lignes candidates, sélectionnées par défaut. Les numériques dégradés sont
// ramenés à zéro par contrat ; un item sans quantité démarre à 1.
func candidatesFromEntries(entries []ports.ExtractedEntry) []CandidateLine {
	out := make([]CandidateLine, 0, len(entries))
	for _, e := range entries {
		l := document.NewLine(entity.LineKindItem)
		if e.Type == "section" {
			l = document.NewLine(entity.LineKindSection)
			l.Label = e.Designation
		} else {
			l.Label = e.Designation
			if !e.Quantite.IsZero() {
				l.Quantity = e.Quantite
			}
			if entity.ValidUnit(e.Unite) {
				l.Unit = e.Unite
			}
			l.UnitPriceHT = e.PrixUnitaireHT
			l.TotalHT = document.LineTotal(l)
		}
		out = append(out, CandidateLine{Line: l, Selected: true})
	}
	return out
}

// ── Opérations de prévisualisation ────────────────────────────────────────────

// Get renvoie l'état courant de la session (polling de progression).
func (uc *UseCase) Get(companyID, sessionID string) (*dto.ImportSessionResponse, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	s, err := uc.owned(companyID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(), nil
}

// WaitForPreview bloque jusqu'à la fin de la génération (ou l'annulation du
// contexte) puis renvoie l'état de la session.
func (uc *UseCase) WaitForPreview(ctx context.Context, companyID, sessionID string) (*dto.ImportSessionResponse, error) {
	uc.mu.Lock()
	s, err := uc.owned(companyID, sessionID)
	uc.mu.Unlock()
	if err != nil {
		return nil, err
	}
	select {
	case <-s.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return uc.Get(companyID, sessionID)
}

// ToggleSelected inverse la sélection d'un candidat. Id inconnu : sans effet.
func (uc *UseCase) ToggleSelected(companyID, sessionID, lineID string) (*dto.ImportSessionResponse, error) {
	return uc.editPreview(companyID, sessionID, func(s *session) {
		for i := range s.candidates {
			if s.candidates[i].ID == lineID {
				s.candidates[i].Selected = !s.candidates[i].Selected
				return
			}
		}
	})
}

// RemoveCandidate retire un candidat de la zone de transit.
func (uc *UseCase) RemoveCandidate(companyID, sessionID, lineID string) (*dto.ImportSessionResponse, error) {
	return uc.editPreview(companyID, sessionID, func(s *session) {
		kept := s.candidates[:0]
		for _, c := range s.candidates {
			if c.ID != lineID {
				kept = append(kept, c)
			}
		}
		s.candidates = kept
	})
}

// EditCandidateField modifie un champ d'un candidat, mêmes sémantiques que
// l'édition d'une ligne vivante (recalcul monétaire, id inconnu sans effet),
// mais cantonnées à la zone de transit.
func (uc *UseCase) EditCandidateField(companyID, sessionID, lineID, field string, value any) (*dto.ImportSessionResponse, error) {
	return uc.editPreview(companyID, sessionID, func(s *session) {
		lines := make([]entity.Line, len(s.candidates))
		for i, c := range s.candidates {
			lines[i] = c.Line
		}
		lines = document.UpdateLineField(lines, lineID, field, value)
		for i := range s.candidates {
			s.candidates[i].Line = lines[i]
		}
	})
}

// Confirm fusionne les candidats sélectionnés dans le document : indicateur
// de sélection retiré, ajout en fin de séquence, renumérotation, sauvegarde.
// La session est close quelle que soit l'issue de la relecture.
func (uc *UseCase) Confirm(ctx context.Context, companyID, sessionID string) (*dto.DocumentResponse, error) {
	uc.mu.Lock()
	s, err := uc.owned(companyID, sessionID)
	if err != nil {
		uc.mu.Unlock()
		return nil, err
	}
	if s.state != StatePreview {
		uc.mu.Unlock()
		return nil, domain.ErrConflict
	}
	var lines []entity.Line
	for _, c := range s.candidates {
		if c.Selected {
			lines = append(lines, c.Line)
		}
	}
	docID := s.docID
	delete(uc.sessions, sessionID)
	uc.mu.Unlock()

	return uc.editorUC.AppendLines(ctx, companyID, docID, lines)
}

// Cancel abandonne la session sans toucher au document. Une extraction encore
// en vol verra ses résultats jetés, jamais appliqués.
func (uc *UseCase) Cancel(companyID, sessionID string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	s, err := uc.owned(companyID, sessionID)
	if err != nil {
		return err
	}
	s.cancelled = true
	delete(uc.sessions, sessionID)
	return nil
}

// editPreview applique fn sous mutex, uniquement en état preview.
func (uc *UseCase) editPreview(companyID, sessionID string, fn func(s *session)) (*dto.ImportSessionResponse, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	s, err := uc.owned(companyID, sessionID)
	if err != nil {
		return nil, err
	}
	if s.state != StatePreview {
		return nil, domain.ErrConflict
	}
	fn(s)
	return s.snapshot(), nil
}

// owned renvoie la session si elle existe et appartient à l'entreprise
// (appelé sous mutex).
func (uc *UseCase) owned(companyID, sessionID string) (*session, error) {
	s, ok := uc.sessions[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if s.companyID != companyID {
		return nil, domain.ErrForbidden
	}
	return s, nil
}
