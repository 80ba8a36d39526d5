package importer_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renovpro/devis-api/internal/application/dto"
	"github.com/renovpro/devis-api/internal/application/editor"
	"github.com/renovpro/devis-api/internal/application/importer"
	"github.com/renovpro/devis-api/internal/application/ports"
	"github.com/renovpro/devis-api/internal/domain"
	"github.com/renovpro/devis-api/internal/domain/entity"
	"github.com/renovpro/devis-api/pkg/logger"
	"github.com/renovpro/devis-api/pkg/retry"
)

// scriptedExtractor service d'extraction piloté par le test : fn reçoit le
// rang d'appel (à partir de 1) et le chunk soumis.
type scriptedExtractor struct {
	mu    sync.Mutex
	calls int
	fn    func(call int, text string) ([]ports.ExtractedEntry, error)
	gate  chan struct{} // si non nil, chaque appel attend son ouverture
}

func (x *scriptedExtractor) ExtractLines(ctx context.Context, text string, mode ports.ExtractionMode) ([]ports.ExtractedEntry, error) {
	if x.gate != nil {
		select {
		case <-x.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	x.mu.Lock()
	x.calls++
	call := x.calls
	x.mu.Unlock()
	return x.fn(call, text)
}

// repo minimal en mémoire, juste ce qu'il faut au cas d'usage éditeur.
type memRepo struct {
	mu   sync.Mutex
	docs map[string]*entity.Document
}

func (r *memRepo) Create(doc *entity.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = doc
	return nil
}

func (r *memRepo) GetByID(id string) (*entity.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc, ok := r.docs[id]; ok {
		cp := *doc
		return &cp, nil
	}
	return nil, nil
}

func (r *memRepo) ListByCompany(string) ([]*entity.Document, error) { return nil, nil }

func (r *memRepo) Update(doc *entity.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = doc
	return nil
}

func (r *memRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, id)
	return nil
}

func setupImport(t *testing.T, x *scriptedExtractor) (*importer.UseCase, *editor.UseCase, string) {
	t.Helper()
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	editorUC := editor.NewUseCase(&memRepo{docs: make(map[string]*entity.Document)}, log, time.Hour)
	doc, err := editorUC.CreateDocument(context.Background(), "co1", dto.CreateDocumentRequest{
		Type: "devis", ClientName: "Mme Brun",
	})
	require.NoError(t, err)

	policy := retry.Policy{MaxAttempts: 1, BaseDelay: time.Millisecond, Timeout: time.Second}
	return importer.NewUseCase(x, editorUC, log, policy), editorUC, doc.ID
}

func entry(typ, designation string, qty, pu float64) ports.ExtractedEntry {
	return ports.ExtractedEntry{
		Type:           typ,
		Designation:    designation,
		Quantite:       decimal.NewFromFloat(qty),
		Unite:          "m²",
		PrixUnitaireHT: decimal.NewFromFloat(pu),
	}
}

// bigQuote fabrique un devis collé avec nChunks sections en capitales et
// assez de lignes chiffrées pour déclencher le découpage.
func bigQuote(nChunks, linesPerChunk int) string {
	var b strings.Builder
	for c := 0; c < nChunks; c++ {
		fmt.Fprintf(&b, "CORPS DETAT %c\n", 'A'+c)
		for i := 0; i < linesPerChunk; i++ {
			fmt.Fprintf(&b, "Prestation %d.%d : 4 m2 à 35 €\n", c+1, i+1)
		}
	}
	return b.String()
}

func TestImport_GenerationPuisConfirmation(t *testing.T) {
	x := &scriptedExtractor{fn: func(call int, text string) ([]ports.ExtractedEntry, error) {
		return []ports.ExtractedEntry{
			{Type: "section", Designation: "Salle de bain"},
			entry("ligne", "Dépose carrelage", 8, 35),
			entry("ligne", "Pose receveur", 1, 240),
			entry("ligne", "Faïence murale", 12, 55),
		}, nil
	}}
	uc, editorUC, docID := setupImport(t, x)
	ctx := context.Background()

	resp, err := uc.Start(ctx, "co1", docID, "Refaire la salle de bain avec douche à l'italienne")
	require.NoError(t, err)
	assert.Equal(t, string(importer.StateGenerating), resp.State)

	resp, err = uc.WaitForPreview(ctx, "co1", resp.ID)
	require.NoError(t, err)
	require.Equal(t, string(importer.StatePreview), resp.State)
	assert.False(t, resp.QuoteMode)
	require.Len(t, resp.Candidates, 4)
	for _, c := range resp.Candidates {
		assert.True(t, c.Selected)
	}
	assert.Equal(t, "280", resp.Candidates[1].TotalHT.String())

	// Relecture : on écarte la faïence, on désélectionne le receveur.
	sessionID := resp.ID
	_, err = uc.RemoveCandidate("co1", sessionID, resp.Candidates[3].ID)
	require.NoError(t, err)
	resp, err = uc.ToggleSelected("co1", sessionID, resp.Candidates[2].ID)
	require.NoError(t, err)
	assert.False(t, resp.Candidates[2].Selected)

	docResp, err := uc.Confirm(ctx, "co1", sessionID)
	require.NoError(t, err)
	require.Len(t, docResp.Lines, 2)
	assert.Equal(t, "Salle de bain", docResp.Lines[0].Label)
	assert.Equal(t, "1.1", docResp.Lines[1].DisplayNumber)
	assert.Equal(t, "280", docResp.Totals.TotalHT.String())

	// Session close : toute relecture ultérieure est refusée.
	_, err = uc.Get("co1", sessionID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Le document a bien été sauvegardé tel quel.
	saved, err := editorUC.GetDocument(ctx, "co1", docID)
	require.NoError(t, err)
	assert.Len(t, saved.Lines, 2)
}

func TestImport_DevisColleDecoupage_EchecPartiel(t *testing.T) {
	// Le chunk 2 échoue définitivement : les chunks 1 et 3 sont conservés,
	// dans l'ordre, et la prévisualisation s'ouvre quand même.
	x := &scriptedExtractor{fn: func(call int, text string) ([]ports.ExtractedEntry, error) {
		if call == 2 {
			return nil, ports.NewExtractionError(ports.ErrKindMalformed, errors.New("json tronqué"))
		}
		return []ports.ExtractedEntry{entry("ligne", fmt.Sprintf("chunk %d", call), 1, 100)}, nil
	}}
	uc, _, docID := setupImport(t, x)
	ctx := context.Background()

	resp, err := uc.Start(ctx, "co1", docID, bigQuote(3, 10))
	require.NoError(t, err)
	resp, err = uc.WaitForPreview(ctx, "co1", resp.ID)
	require.NoError(t, err)

	require.Equal(t, string(importer.StatePreview), resp.State)
	assert.True(t, resp.QuoteMode)
	assert.Equal(t, 3, resp.ChunksTotal)
	assert.Equal(t, 3, resp.ChunksDone)
	require.Len(t, resp.Candidates, 2)
	assert.Equal(t, "chunk 1", resp.Candidates[0].Label)
	assert.Equal(t, "chunk 3", resp.Candidates[1].Label)
	// 2 lignes extraites sur ~30 estimées : avertissement attendu.
	assert.NotEmpty(t, resp.Warning)
}

func TestImport_AppelUniqueEnEchec_RetourIdle(t *testing.T) {
	x := &scriptedExtractor{fn: func(int, string) ([]ports.ExtractedEntry, error) {
		return nil, ports.NewExtractionError(ports.ErrKindRateLimited, errors.New("429"))
	}}
	uc, _, docID := setupImport(t, x)
	ctx := context.Background()

	resp, err := uc.Start(ctx, "co1", docID, "Peindre le salon")
	require.NoError(t, err)
	resp, err = uc.WaitForPreview(ctx, "co1", resp.ID)
	require.NoError(t, err)

	assert.Equal(t, string(importer.StateIdle), resp.State)
	assert.Contains(t, resp.Error, "saturé")
	assert.Empty(t, resp.Candidates)
}

func TestImport_AucuneLigneExtraite(t *testing.T) {
	x := &scriptedExtractor{fn: func(int, string) ([]ports.ExtractedEntry, error) {
		return nil, nil
	}}
	uc, _, docID := setupImport(t, x)
	ctx := context.Background()

	resp, err := uc.Start(ctx, "co1", docID, "Peindre le salon")
	require.NoError(t, err)
	resp, err = uc.WaitForPreview(ctx, "co1", resp.ID)
	require.NoError(t, err)

	assert.Equal(t, string(importer.StateIdle), resp.State)
	assert.Contains(t, resp.Error, "Aucune ligne extraite")
}

func TestImport_AnnulationJetteLesResultatsTardifs(t *testing.T) {
	gate := make(chan struct{})
	x := &scriptedExtractor{
		gate: gate,
		fn: func(int, string) ([]ports.ExtractedEntry, error) {
			return []ports.ExtractedEntry{entry("ligne", "tardive", 1, 100)}, nil
		},
	}
	uc, editorUC, docID := setupImport(t, x)
	ctx := context.Background()

	resp, err := uc.Start(ctx, "co1", docID, "Peindre le salon")
	require.NoError(t, err)
	require.NoError(t, uc.Cancel("co1", resp.ID))

	// L'extraction encore en vol se termine après l'annulation.
	close(gate)
	_, err = uc.WaitForPreview(ctx, "co1", resp.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	doc, err := editorUC.GetDocument(ctx, "co1", docID)
	require.NoError(t, err)
	assert.Empty(t, doc.Lines)
}

func TestImport_EditionDeCandidat(t *testing.T) {
	x := &scriptedExtractor{fn: func(int, string) ([]ports.ExtractedEntry, error) {
		return []ports.ExtractedEntry{entry("ligne", "Parquet", 10, 40)}, nil
	}}
	uc, _, docID := setupImport(t, x)
	ctx := context.Background()

	resp, err := uc.Start(ctx, "co1", docID, "Poser du parquet")
	require.NoError(t, err)
	resp, err = uc.WaitForPreview(ctx, "co1", resp.ID)
	require.NoError(t, err)
	require.Len(t, resp.Candidates, 1)

	// Mêmes sémantiques que l'édition de lignes vivantes, recalcul compris.
	resp, err = uc.EditCandidateField("co1", resp.ID, resp.Candidates[0].ID, "quantity", "12")
	require.NoError(t, err)
	assert.Equal(t, "480", resp.Candidates[0].TotalHT.String())
}

func TestImport_ConfirmationHorsPreview(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	x := &scriptedExtractor{
		gate: gate,
		fn: func(int, string) ([]ports.ExtractedEntry, error) { return nil, nil },
	}
	uc, _, docID := setupImport(t, x)

	resp, err := uc.Start(context.Background(), "co1", docID, "Peindre le salon")
	require.NoError(t, err)

	_, err = uc.Confirm(context.Background(), "co1", resp.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestImport_AppartenanceEntreprise(t *testing.T) {
	x := &scriptedExtractor{fn: func(int, string) ([]ports.ExtractedEntry, error) { return nil, nil }}
	uc, _, docID := setupImport(t, x)

	_, err := uc.Start(context.Background(), "co2", docID, "Peindre le salon")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRatioWarning(t *testing.T) {
	// En dessous de la moitié de l'estimation : invitation à regénérer.
	far := importer.RatioWarning(8, 20, true)
	assert.Contains(t, far, "moins de lignes")
	// Entre 50 % et 80 % : simple mise en garde.
	missing := importer.RatioWarning(15, 20, true)
	assert.Contains(t, missing, "manquantes")
	assert.NotEqual(t, far, missing)
	// Ratio satisfaisant, estimation nulle ou mode génération : pas d'alerte.
	assert.Empty(t, importer.RatioWarning(18, 20, true))
	assert.Empty(t, importer.RatioWarning(0, 0, true))
	assert.Empty(t, importer.RatioWarning(2, 20, false))
}
