package document_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renovpro/devis-api/internal/domain/document"
	"github.com/renovpro/devis-api/internal/domain/entity"
)

func TestNewLine_DefautsParNature(t *testing.T) {
	it := document.NewLine(entity.LineKindItem)
	assert.NotEmpty(t, it.ID)
	assert.Equal(t, "1", it.Quantity.String())
	assert.Equal(t, entity.UnitUnit, it.Unit)
	assert.Equal(t, "10", it.TaxRate.String())
	assert.Equal(t, entity.DiscountNone, it.Discount.Mode)

	sec := document.NewLine(entity.LineKindSection)
	assert.Equal(t, "Nouvelle section", sec.Label)
}

func TestAddLine_Position(t *testing.T) {
	seq := document.Renumber([]entity.Line{
		line("s1", entity.LineKindSection),
		line("a", entity.LineKindItem),
	})

	// Insertion après l'indice 0 : la nouvelle ligne prend la position 1.
	out, nl := document.AddLine(seq, entity.LineKindItem, 0)
	require.Len(t, out, 3)
	assert.Equal(t, nl.ID, out[1].ID)
	assert.Equal(t, "1.1", out[1].DisplayNumber)
	assert.Equal(t, "1.2", out[2].DisplayNumber)

	// afterIndex hors bornes : ajout en fin de séquence.
	out, nl = document.AddLine(seq, entity.LineKindItem, 42)
	require.Len(t, out, 3)
	assert.Equal(t, nl.ID, out[2].ID)
}

func TestUpdateLineField_ChampMonetaire(t *testing.T) {
	seq := []entity.Line{item(2, 50, entity.Discount{Mode: entity.DiscountNone})}
	seq[0].ID = "a"

	out := document.UpdateLineField(seq, "a", document.FieldQuantity, "3")
	assert.Equal(t, "150", out[0].TotalHT.String())

	out = document.UpdateLineField(out, "a", document.FieldDiscountMode, "percentage")
	out = document.UpdateLineField(out, "a", document.FieldDiscountValue, float64(10))
	assert.Equal(t, "135", out[0].TotalHT.String())
}

func TestUpdateLineField_IdInconnuSansEffet(t *testing.T) {
	seq := document.Renumber([]entity.Line{line("a", entity.LineKindItem)})
	out := document.UpdateLineField(seq, "fantome", document.FieldLabel, "x")
	require.Len(t, out, 1)
	assert.Equal(t, seq[0].Label, out[0].Label)
}

func TestUpdateLineField_ValeursHostiles(t *testing.T) {
	seq := document.Renumber([]entity.Line{line("a", entity.LineKindItem)})

	// Aucune de ces valeurs ne doit faire paniquer ni corrompre la ligne.
	out := document.UpdateLineField(seq, "a", document.FieldQuantity, "n'importe quoi")
	assert.True(t, out[0].Quantity.IsZero())
	out = document.UpdateLineField(out, "a", document.FieldUnit, "parsec")
	assert.NotEqual(t, "parsec", out[0].Unit)
	out = document.UpdateLineField(out, "a", document.FieldKind, "vaisseau")
	assert.Equal(t, entity.LineKindItem, out[0].Kind)
	out = document.UpdateLineField(out, "a", document.FieldDiscountMode, 12)
	assert.Equal(t, entity.DiscountNone, out[0].Discount.Mode)
}

func TestUpdateLineField_ChangementDeNatureRenumerote(t *testing.T) {
	seq := document.Renumber([]entity.Line{
		line("s1", entity.LineKindSection),
		line("a", entity.LineKindItem),
		line("b", entity.LineKindItem),
	})

	// "a" devient une section : "b" se rattache à elle.
	out := document.UpdateLineField(seq, "a", document.FieldKind, string(entity.LineKindSection))
	assert.Equal(t, "2", out[1].DisplayNumber)
	assert.Equal(t, "a", out[2].SectionID)
	assert.Equal(t, "2.1", out[2].DisplayNumber)
}

func TestDeleteLine_CascadeSection(t *testing.T) {
	seq := document.Renumber([]entity.Line{
		line("s1", entity.LineKindSection),
		line("a", entity.LineKindItem),
		line("t", entity.LineKindText),
		line("s2", entity.LineKindSection),
		line("b", entity.LineKindItem),
	})

	out := document.DeleteLine(seq, "s1")

	// La section et tout ce qui lui était rattaché disparaissent d'un coup.
	require.Len(t, out, 2)
	assert.Equal(t, "s2", out[0].ID)
	assert.Equal(t, "1", out[0].DisplayNumber)
	assert.Equal(t, "1.1", out[1].DisplayNumber)
}

func TestDeleteLine_ItemSeul(t *testing.T) {
	seq := document.Renumber([]entity.Line{
		line("s1", entity.LineKindSection),
		line("a", entity.LineKindItem),
		line("b", entity.LineKindItem),
	})
	out := document.DeleteLine(seq, "a")
	require.Len(t, out, 2)
	assert.Equal(t, "1.1", out[1].DisplayNumber)
}

func TestDeleteLine_IdInconnuSansEffet(t *testing.T) {
	seq := document.Renumber([]entity.Line{line("a", entity.LineKindItem)})
	out := document.DeleteLine(seq, "fantome")
	require.Len(t, out, 1)
}

func TestReorderLines_RetraitPuisReinsertion(t *testing.T) {
	seq := document.Renumber([]entity.Line{
		line("a", entity.LineKindItem),
		line("b", entity.LineKindItem),
		line("c", entity.LineKindItem),
	})
	out := document.ReorderLines(seq, 0, 2)
	assert.Equal(t, []string{"b", "c", "a"}, ids(out))
	assert.Equal(t, "3", out[2].DisplayNumber)
}

func TestReorderLines_RattachementSilencieux(t *testing.T) {
	seq := document.Renumber([]entity.Line{
		line("s1", entity.LineKindSection),
		line("a", entity.LineKindItem),
		line("s2", entity.LineKindSection),
		line("b", entity.LineKindItem),
	})

	// "a" glissé après la section 2 : il change de section sans confirmation,
	// son rattachement découle uniquement de sa nouvelle position.
	out := document.ReorderLines(seq, 1, 3)
	require.Equal(t, "a", out[3].ID)
	assert.Equal(t, "s2", out[3].SectionID)
	assert.Equal(t, "2.2", out[3].DisplayNumber)
	assert.Equal(t, "2.1", out[2].DisplayNumber)
}

func TestReorderLines_IndicesHorsBornes(t *testing.T) {
	seq := document.Renumber([]entity.Line{
		line("a", entity.LineKindItem),
		line("b", entity.LineKindItem),
	})
	assert.Equal(t, ids(seq), ids(document.ReorderLines(seq, -1, 0)))
	assert.Equal(t, ids(seq), ids(document.ReorderLines(seq, 0, 5)))
}

func ids(lines []entity.Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.ID
	}
	return out
}
