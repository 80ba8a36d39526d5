package repository

import "github.com/renovpro/devis-api/internal/domain/entity"

// DocumentRepository persistance des devis/factures : en-tête, totaux et
// séquence complète de lignes (l'ordre de la séquence est porteur de sens et
// doit être conservé tel quel).
type DocumentRepository interface {
	Create(doc *entity.Document) error
	GetByID(id string) (*entity.Document, error)
	ListByCompany(companyID string) ([]*entity.Document, error)
	// Update réécrit l'en-tête, les totaux et la séquence de lignes entière.
	Update(doc *entity.Document) error
	Delete(id string) error
}
