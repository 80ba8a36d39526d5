package document_test

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renovpro/devis-api/internal/domain/document"
	"github.com/renovpro/devis-api/internal/domain/entity"
)

func item(qty, pu float64, d entity.Discount) entity.Line {
	return entity.Line{
		ID:          "l1",
		Kind:        entity.LineKindItem,
		Label:       "Dépose cloison",
		Quantity:    decimal.NewFromFloat(qty),
		Unit:        entity.UnitSquareMeter,
		UnitPriceHT: decimal.NewFromFloat(pu),
		Discount:    d,
	}
}

func TestLineTotal_RemisePourcentage(t *testing.T) {
	// 10 × 20 = 200, remise 10 % = 20, total 180.00
	l := item(10, 20, entity.Discount{Mode: entity.DiscountPercentage, Value: decimal.NewFromInt(10)})
	total := document.LineTotal(l)
	assert.Equal(t, "180", total.String())
}

func TestLineTotal_RemiseMontant(t *testing.T) {
	l := item(3, 50, entity.Discount{Mode: entity.DiscountAmount, Value: decimal.NewFromFloat(12.5)})
	assert.Equal(t, "137.5", document.LineTotal(l).String())
}

func TestLineTotal_SansRemise(t *testing.T) {
	l := item(2.5, 41.33, entity.Discount{Mode: entity.DiscountNone})
	// 103.325 arrondi commercial -> 103.33
	assert.Equal(t, "103.33", document.LineTotal(l).String())
}

func TestLineTotal_LigneAvoir(t *testing.T) {
	// Prix unitaire négatif : ligne d'avoir, le total est négatif.
	l := item(1, -150, entity.Discount{Mode: entity.DiscountNone})
	assert.Equal(t, "-150", document.LineTotal(l).String())
}

func TestLineTotal_NatureNonChiffree(t *testing.T) {
	for _, kind := range []entity.LineKind{
		entity.LineKindSection, entity.LineKindText, entity.LineKindHeader, entity.LineKindSubtotal,
	} {
		l := entity.Line{ID: "x", Kind: kind, Label: "texte", Quantity: decimal.NewFromInt(4), UnitPriceHT: decimal.NewFromInt(100)}
		assert.True(t, document.LineTotal(l).IsZero(), "kind %s doit valoir zéro", kind)
	}
}

func TestLineTotal_ArrondiDemiVersExterieur(t *testing.T) {
	// 0.125 doit donner 0.13, pas 0.12 (pas d'arrondi bancaire).
	l := item(1, 0.125, entity.Discount{Mode: entity.DiscountNone})
	assert.Equal(t, "0.13", document.LineTotal(l).String())
}

func TestCoerceDecimal_ValeursDegradees(t *testing.T) {
	require.True(t, document.CoerceDecimal(math.NaN()).IsZero())
	require.True(t, document.CoerceDecimal(math.Inf(1)).IsZero())
	require.True(t, document.CoerceDecimal("pas un nombre").IsZero())
	require.True(t, document.CoerceDecimal(nil).IsZero())
	require.True(t, document.CoerceDecimal(struct{}{}).IsZero())

	assert.Equal(t, "12.5", document.CoerceDecimal(12.5).String())
	assert.Equal(t, "12.5", document.CoerceDecimal("12.5").String())
	assert.Equal(t, "7", document.CoerceDecimal(7).String())
}
