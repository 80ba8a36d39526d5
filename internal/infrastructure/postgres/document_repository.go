package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/renovpro/devis-api/internal/domain/entity"
	"github.com/renovpro/devis-api/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo persistance des documents : en-tête dans documents, séquence
// de lignes dans document_lines avec une colonne position qui matérialise
// l'ordre (porteur de sens : sections et numérotation en découlent).
type DocumentRepo struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository construit l'adaptateur.
func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepo {
	return &DocumentRepo{pool: pool}
}

// Create persiste l'en-tête et les lignes initiales dans une transaction.
func (r *DocumentRepo) Create(doc *entity.Document) error {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO documents (id, company_id, type, number, client_name, chantier_ref, status, date,
			global_discount_mode, global_discount_value, tax_applicable,
			total_ht, total_tva, total_ttc, total_remise, net_a_payer, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		doc.ID, doc.CompanyID, doc.Type, doc.Number, doc.ClientName, doc.ChantierRef, doc.Status, doc.Date,
		doc.GlobalDiscount.Mode, doc.GlobalDiscount.Value, doc.TaxApplicable,
		doc.Totals.TotalHT, doc.Totals.TotalTVA, doc.Totals.TotalTTC, doc.Totals.TotalRemise, doc.Totals.NetAPayer,
		doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("numéro de document déjà utilisé: %w", err)
		}
		return fmt.Errorf("insérer document: %w", err)
	}
	if err := insertLines(ctx, tx, doc.ID, doc.Lines); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GetByID charge l'en-tête et la séquence complète de lignes, dans l'ordre.
// Renvoie (nil, nil) si le document n'existe pas.
func (r *DocumentRepo) GetByID(id string) (*entity.Document, error) {
	ctx := context.Background()
	doc := &entity.Document{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, company_id, type, number, client_name, chantier_ref, status, date,
			global_discount_mode, global_discount_value, tax_applicable,
			total_ht, total_tva, total_ttc, total_remise, net_a_payer, created_at, updated_at
		FROM documents WHERE id = $1`, id,
	).Scan(
		&doc.ID, &doc.CompanyID, &doc.Type, &doc.Number, &doc.ClientName, &doc.ChantierRef, &doc.Status, &doc.Date,
		&doc.GlobalDiscount.Mode, &doc.GlobalDiscount.Value, &doc.TaxApplicable,
		&doc.Totals.TotalHT, &doc.Totals.TotalTVA, &doc.Totals.TotalTTC, &doc.Totals.TotalRemise, &doc.Totals.NetAPayer,
		&doc.CreatedAt, &doc.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lire document: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, kind, label, quantity, unit, unit_price_ht,
			discount_mode, discount_value, tax_rate, total_ht, section_id, display_number
		FROM document_lines WHERE document_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("lire lignes: %w", err)
	}
	defer rows.Close()

	doc.Lines = []entity.Line{}
	for rows.Next() {
		var l entity.Line
		var sectionID *string
		if err := rows.Scan(
			&l.ID, &l.Kind, &l.Label, &l.Quantity, &l.Unit, &l.UnitPriceHT,
			&l.Discount.Mode, &l.Discount.Value, &l.TaxRate, &l.TotalHT, &sectionID, &l.DisplayNumber,
		); err != nil {
			return nil, fmt.Errorf("scanner ligne: %w", err)
		}
		if sectionID != nil {
			l.SectionID = *sectionID
		}
		doc.Lines = append(doc.Lines, l)
	}
	return doc, rows.Err()
}

// ListByCompany liste les en-têtes (sans les lignes), plus récents d'abord.
func (r *DocumentRepo) ListByCompany(companyID string) ([]*entity.Document, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT id, company_id, type, number, client_name, chantier_ref, status, date,
			global_discount_mode, global_discount_value, tax_applicable,
			total_ht, total_tva, total_ttc, total_remise, net_a_payer, created_at, updated_at
		FROM documents WHERE company_id = $1 ORDER BY date DESC, created_at DESC`, companyID)
	if err != nil {
		return nil, fmt.Errorf("lister documents: %w", err)
	}
	defer rows.Close()

	var docs []*entity.Document
	for rows.Next() {
		doc := &entity.Document{}
		if err := rows.Scan(
			&doc.ID, &doc.CompanyID, &doc.Type, &doc.Number, &doc.ClientName, &doc.ChantierRef, &doc.Status, &doc.Date,
			&doc.GlobalDiscount.Mode, &doc.GlobalDiscount.Value, &doc.TaxApplicable,
			&doc.Totals.TotalHT, &doc.Totals.TotalTVA, &doc.Totals.TotalTTC, &doc.Totals.TotalRemise, &doc.Totals.NetAPayer,
			&doc.CreatedAt, &doc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanner document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Update réécrit l'en-tête, les totaux et la séquence de lignes entière
// (delete puis insert : l'ordre réécrit est la seule vérité).
func (r *DocumentRepo) Update(doc *entity.Document) error {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE documents SET client_name=$2, chantier_ref=$3, status=$4,
			global_discount_mode=$5, global_discount_value=$6, tax_applicable=$7,
			total_ht=$8, total_tva=$9, total_ttc=$10, total_remise=$11, net_a_payer=$12, updated_at=$13
		WHERE id = $1`,
		doc.ID, doc.ClientName, doc.ChantierRef, doc.Status,
		doc.GlobalDiscount.Mode, doc.GlobalDiscount.Value, doc.TaxApplicable,
		doc.Totals.TotalHT, doc.Totals.TotalTVA, doc.Totals.TotalTTC, doc.Totals.TotalRemise, doc.Totals.NetAPayer,
		doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("mettre à jour document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s inexistant", doc.ID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM document_lines WHERE document_id = $1`, doc.ID); err != nil {
		return fmt.Errorf("purger lignes: %w", err)
	}
	if err := insertLines(ctx, tx, doc.ID, doc.Lines); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Delete supprime le document ; les lignes suivent par contrainte ON DELETE CASCADE.
func (r *DocumentRepo) Delete(id string) error {
	_, err := r.pool.Exec(context.Background(), `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("supprimer document: %w", err)
	}
	return nil
}

func insertLines(ctx context.Context, tx pgx.Tx, docID string, lines []entity.Line) error {
	for i, l := range lines {
		var sectionID *string
		if l.SectionID != "" {
			sectionID = &l.SectionID
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO document_lines (id, document_id, position, kind, label, quantity, unit,
				unit_price_ht, discount_mode, discount_value, tax_rate, total_ht, section_id, display_number)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
			l.ID, docID, i, l.Kind, l.Label, l.Quantity, l.Unit,
			l.UnitPriceHT, l.Discount.Mode, l.Discount.Value, l.TaxRate, l.TotalHT, sectionID, l.DisplayNumber,
		)
		if err != nil {
			return fmt.Errorf("insérer ligne %d: %w", i, err)
		}
	}
	return nil
}
