// Package editor expose les opérations d'édition de la séquence de lignes
// d'un document : ajout, modification de champ, suppression (cascade pour les
// sections), réordonnancement. Chaque opération applique l'édition pure du
// moteur, renumérote, recalcule les totaux puis planifie la sauvegarde
// différée de la session d'édition.
package editor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/renovpro/devis-api/internal/application/dto"
	"github.com/renovpro/devis-api/internal/domain"
	"github.com/renovpro/devis-api/internal/domain/document"
	"github.com/renovpro/devis-api/internal/domain/entity"
	"github.com/renovpro/devis-api/internal/domain/repository"
	"github.com/renovpro/devis-api/pkg/logger"
	"github.com/renovpro/devis-api/pkg/sched"
)

// DefaultSaveDelay délai de débounce de la sauvegarde pendant une rafale d'éditions.
const DefaultSaveDelay = 2 * time.Second

// UseCase cas d'usage des documents et de l'édition de leurs lignes.
// La séquence de lignes d'un document est la propriété exclusive de sa
// session d'édition : un seul écrivain, les mutations sont sérialisées.
type UseCase struct {
	repo      repository.DocumentRepository
	log       *logger.Logger
	saveDelay time.Duration

	mu       sync.Mutex
	sessions map[string]*editSession // docID -> session ouverte
}

// editSession document en cours d'édition et sa sauvegarde différée.
type editSession struct {
	doc  *entity.Document
	save *sched.Task
}

// NewUseCase construit le cas d'usage.
func NewUseCase(repo repository.DocumentRepository, log *logger.Logger, saveDelay time.Duration) *UseCase {
	if saveDelay <= 0 {
		saveDelay = DefaultSaveDelay
	}
	return &UseCase{
		repo:      repo,
		log:       log,
		saveDelay: saveDelay,
		sessions:  make(map[string]*editSession),
	}
}

// CreateDocument crée un document vide (séquence de lignes vide, totaux à zéro).
func (uc *UseCase) CreateDocument(ctx context.Context, companyID string, in dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	if companyID == "" || in.ClientName == "" {
		return nil, domain.ErrInvalidInput
	}
	docType := entity.DocumentType(in.Type)
	if docType != entity.DocumentTypeDevis && docType != entity.DocumentTypeFacture {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	number := in.Number
	if number == "" {
		prefix := "DEV"
		if docType == entity.DocumentTypeFacture {
			prefix = "FAC"
		}
		number = fmt.Sprintf("%s-%d", prefix, now.Unix())
	}
	taxApplicable := true
	if in.TaxApplicable != nil {
		taxApplicable = *in.TaxApplicable
	}

	doc := &entity.Document{
		ID:             uuid.New().String(),
		CompanyID:      companyID,
		Type:           docType,
		Number:         number,
		ClientName:     in.ClientName,
		ChantierRef:    in.ChantierRef,
		Status:         entity.DocumentStatusDraft,
		Date:           now,
		GlobalDiscount: discountFromDTO(in.GlobalDiscount),
		TaxApplicable:  taxApplicable,
		Lines:          []entity.Line{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	doc.Totals = document.ComputeTotals(doc.Lines, doc.GlobalDiscount, doc.TaxApplicable)

	if err := uc.repo.Create(doc); err != nil {
		return nil, fmt.Errorf("créer document: %w", err)
	}
	return ToDocumentResponse(doc), nil
}

// GetDocument renvoie le document complet, état de session d'édition compris.
func (uc *UseCase) GetDocument(ctx context.Context, companyID, id string) (*dto.DocumentResponse, error) {
	if _, err := uc.loadOwned(companyID, id); err != nil {
		return nil, err
	}
	uc.mu.Lock()
	s, ok := uc.sessions[id]
	if !ok {
		// Session fermée par une suppression concurrente entre les deux verrous.
		uc.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	snapshot := copyDocument(s.doc)
	uc.mu.Unlock()
	return ToDocumentResponse(snapshot), nil
}

// ListDocuments liste les en-têtes des documents de l'entreprise.
func (uc *UseCase) ListDocuments(ctx context.Context, companyID string) ([]dto.DocumentSummary, error) {
	docs, err := uc.repo.ListByCompany(companyID)
	if err != nil {
		return nil, fmt.Errorf("lister documents: %w", err)
	}
	out := make([]dto.DocumentSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, dto.DocumentSummary{
			ID:         d.ID,
			Type:       string(d.Type),
			Number:     d.Number,
			ClientName: d.ClientName,
			Status:     d.Status,
			Date:       d.Date.Format("2006-01-02"),
			TotalTTC:   d.Totals.TotalTTC,
		})
	}
	return out, nil
}

// UpdateDocument modifie l'en-tête (client, statut, remise globale, TVA),
// recalcule les totaux et sauvegarde immédiatement.
func (uc *UseCase) UpdateDocument(ctx context.Context, companyID, id string, in dto.UpdateDocumentRequest) (*dto.DocumentResponse, error) {
	if in.ClientName == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.mutate(companyID, id, true, func(doc *entity.Document) {
		doc.ClientName = in.ClientName
		doc.ChantierRef = in.ChantierRef
		if in.Status != "" {
			doc.Status = in.Status
		}
		if in.TaxApplicable != nil {
			doc.TaxApplicable = *in.TaxApplicable
		}
		doc.GlobalDiscount = discountFromDTO(in.GlobalDiscount)
	})
}

// DeleteDocument supprime le document et ferme sa session d'édition.
func (uc *UseCase) DeleteDocument(ctx context.Context, companyID, id string) error {
	if _, err := uc.loadOwned(companyID, id); err != nil {
		return err
	}
	uc.mu.Lock()
	if s, ok := uc.sessions[id]; ok {
		s.save.Cancel()
		delete(uc.sessions, id)
	}
	uc.mu.Unlock()
	if err := uc.repo.Delete(id); err != nil {
		return fmt.Errorf("supprimer document: %w", err)
	}
	return nil
}

// AddLine insère une ligne après afterIndex (-1 : en fin de séquence).
func (uc *UseCase) AddLine(ctx context.Context, companyID, docID string, kind entity.LineKind, afterIndex int) (*dto.DocumentResponse, error) {
	if !entity.ValidLineKind(kind) {
		return nil, domain.ErrInvalidInput
	}
	return uc.mutate(companyID, docID, false, func(doc *entity.Document) {
		doc.Lines, _ = document.AddLine(doc.Lines, kind, afterIndex)
	})
}

// UpdateLineField modifie un champ d'une ligne. Id de ligne inconnu : aucune
// mutation, pas d'erreur (idempotent).
func (uc *UseCase) UpdateLineField(ctx context.Context, companyID, docID, lineID, field string, value any) (*dto.DocumentResponse, error) {
	return uc.mutate(companyID, docID, false, func(doc *entity.Document) {
		doc.Lines = document.UpdateLineField(doc.Lines, lineID, field, value)
	})
}

// DeleteLine supprime une ligne, en cascade si c'est une section.
func (uc *UseCase) DeleteLine(ctx context.Context, companyID, docID, lineID string) (*dto.DocumentResponse, error) {
	return uc.mutate(companyID, docID, false, func(doc *entity.Document) {
		doc.Lines = document.DeleteLine(doc.Lines, lineID)
	})
}

// ReorderLines déplace une ligne (sémantique drag-and-drop : retrait puis
// réinsertion). Le rattachement de section suit la nouvelle position.
func (uc *UseCase) ReorderLines(ctx context.Context, companyID, docID string, sourceIndex, destIndex int) (*dto.DocumentResponse, error) {
	return uc.mutate(companyID, docID, false, func(doc *entity.Document) {
		doc.Lines = document.ReorderLines(doc.Lines, sourceIndex, destIndex)
	})
}

// AppendLines ajoute des lignes en fin de séquence (confirmation d'un import),
// renumérote et sauvegarde immédiatement.
func (uc *UseCase) AppendLines(ctx context.Context, companyID, docID string, lines []entity.Line) (*dto.DocumentResponse, error) {
	return uc.mutate(companyID, docID, true, func(doc *entity.Document) {
		doc.Lines = document.Renumber(append(doc.Lines, lines...))
	})
}

// Save force l'écriture de la session d'édition sans attendre le débounce.
func (uc *UseCase) Save(ctx context.Context, companyID, docID string) (*dto.DocumentResponse, error) {
	if _, err := uc.loadOwned(companyID, docID); err != nil {
		return nil, err
	}
	uc.mu.Lock()
	s, ok := uc.sessions[docID]
	if !ok {
		// Session fermée par une suppression concurrente : ne pas ressusciter.
		uc.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	s.save.Cancel()
	snapshot := copyDocument(s.doc)
	uc.mu.Unlock()

	if err := uc.repo.Update(snapshot); err != nil {
		return nil, fmt.Errorf("sauvegarder document: %w", err)
	}
	return ToDocumentResponse(snapshot), nil
}

// FlushAll force l'écriture de toute sauvegarde différée encore en attente.
// Appelé à l'arrêt du serveur : les dernières éditions débouncées ne doivent
// pas être perdues.
func (uc *UseCase) FlushAll() {
	uc.mu.Lock()
	tasks := make([]*sched.Task, 0, len(uc.sessions))
	for _, s := range uc.sessions {
		tasks = append(tasks, s.save)
	}
	uc.mu.Unlock()
	// Flush relance uc.flush, qui reprend le mutex : hors verrou.
	for _, t := range tasks {
		t.Flush()
	}
}

// ── Mécanique de session ──────────────────────────────────────────────────────

// mutate charge la session du document, applique fn, renumérote via fn (les
// opérations du moteur renvoient des séquences déjà renumérotées), recalcule
// les totaux puis sauvegarde — immédiatement ou en différé.
func (uc *UseCase) mutate(companyID, docID string, immediate bool, fn func(doc *entity.Document)) (*dto.DocumentResponse, error) {
	if _, err := uc.loadOwned(companyID, docID); err != nil {
		return nil, err
	}

	uc.mu.Lock()
	s, ok := uc.sessions[docID]
	if !ok {
		// Session fermée par une suppression concurrente entre les deux verrous.
		uc.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	fn(s.doc)
	s.doc.Totals = document.ComputeTotals(s.doc.Lines, s.doc.GlobalDiscount, s.doc.TaxApplicable)
	s.doc.UpdatedAt = time.Now()
	snapshot := copyDocument(s.doc)
	if !immediate {
		s.save.Start()
	} else {
		s.save.Cancel()
	}
	uc.mu.Unlock()

	if immediate {
		if err := uc.repo.Update(snapshot); err != nil {
			return nil, fmt.Errorf("sauvegarder document: %w", err)
		}
	}
	return ToDocumentResponse(snapshot), nil
}

// loadOwned renvoie le document de la session (ou le charge depuis le dépôt)
// après contrôle d'appartenance à l'entreprise.
func (uc *UseCase) loadOwned(companyID, docID string) (*entity.Document, error) {
	uc.mu.Lock()
	if s, ok := uc.sessions[docID]; ok {
		defer uc.mu.Unlock()
		if s.doc.CompanyID != companyID {
			return nil, domain.ErrForbidden
		}
		return s.doc, nil
	}
	uc.mu.Unlock()

	doc, err := uc.repo.GetByID(docID)
	if err != nil || doc == nil {
		return nil, domain.ErrNotFound
	}
	if doc.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	// L'affichage ne doit jamais voir un état non numéroté.
	doc.Lines = document.Renumber(doc.Lines)

	uc.mu.Lock()
	defer uc.mu.Unlock()
	if s, ok := uc.sessions[docID]; ok { // une autre requête a ouvert la session
		return s.doc, nil
	}
	s := &editSession{doc: doc}
	s.save = sched.New(uc.saveDelay, func() { uc.flush(docID) })
	uc.sessions[docID] = s
	return doc, nil
}

// flush écrit l'état courant de la session (déclenché par la tâche différée).
func (uc *UseCase) flush(docID string) {
	uc.mu.Lock()
	s, ok := uc.sessions[docID]
	if !ok {
		uc.mu.Unlock()
		return
	}
	snapshot := copyDocument(s.doc)
	uc.mu.Unlock()

	if err := uc.repo.Update(snapshot); err != nil {
		uc.log.Error().Err(err).Str("document_id", docID).Msg("sauvegarde différée échouée")
	}
}

func copyDocument(doc *entity.Document) *entity.Document {
	cp := *doc
	cp.Lines = make([]entity.Line, len(doc.Lines))
	copy(cp.Lines, doc.Lines)
	return &cp
}

func discountFromDTO(d dto.DiscountDTO) entity.Discount {
	switch entity.DiscountMode(d.Mode) {
	case entity.DiscountPercentage:
		return entity.Discount{Mode: entity.DiscountPercentage, Value: d.Value}
	case entity.DiscountAmount:
		return entity.Discount{Mode: entity.DiscountAmount, Value: d.Value}
	default:
		return entity.Discount{Mode: entity.DiscountNone}
	}
}

// ── Mapping DTO ───────────────────────────────────────────────────────────────

// ToDocumentResponse projette le document en réponse API, sous-totaux courants
// des lignes subtotal rendus à la volée.
func ToDocumentResponse(doc *entity.Document) *dto.DocumentResponse {
	resp := &dto.DocumentResponse{
		ID:            doc.ID,
		CompanyID:     doc.CompanyID,
		Type:          string(doc.Type),
		Number:        doc.Number,
		ClientName:    doc.ClientName,
		ChantierRef:   doc.ChantierRef,
		Status:        doc.Status,
		Date:          doc.Date.Format("2006-01-02"),
		TaxApplicable: doc.TaxApplicable,
		GlobalDiscount: dto.DiscountDTO{
			Mode:  string(doc.GlobalDiscount.Mode),
			Value: doc.GlobalDiscount.Value,
		},
		Lines: make([]dto.LineResponse, 0, len(doc.Lines)),
		Totals: dto.TotalsResponse{
			TotalHT:     doc.Totals.TotalHT,
			TotalTVA:    doc.Totals.TotalTVA,
			TotalTTC:    doc.Totals.TotalTTC,
			TotalRemise: doc.Totals.TotalRemise,
			NetAPayer:   doc.Totals.NetAPayer,
		},
	}
	for i, l := range doc.Lines {
		lr := ToLineResponse(l)
		if l.Kind == entity.LineKindSubtotal {
			sub := document.RunningSubtotal(doc.Lines, i)
			lr.Subtotal = &sub
		}
		resp.Lines = append(resp.Lines, lr)
	}
	return resp
}

// ToLineResponse projette une ligne en réponse API.
func ToLineResponse(l entity.Line) dto.LineResponse {
	return dto.LineResponse{
		ID:          l.ID,
		Kind:        string(l.Kind),
		Label:       l.Label,
		Quantity:    l.Quantity,
		Unit:        l.Unit,
		UnitPriceHT: l.UnitPriceHT,
		Discount: dto.DiscountDTO{
			Mode:  string(l.Discount.Mode),
			Value: l.Discount.Value,
		},
		TaxRate:       l.TaxRate,
		TotalHT:       document.LineTotal(l),
		SectionID:     l.SectionID,
		DisplayNumber: l.DisplayNumber,
	}
}
