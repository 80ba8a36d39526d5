package importer_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renovpro/devis-api/internal/application/importer"
)

func TestSplitChunks_TitresStructurels(t *testing.T) {
	text := strings.Join([]string{
		"DEMOLITION",
		"Dépose cloison 10 m2",
		"Évacuation gravats",
		"PLOMBERIE",
		"Alimentation douche 1 u",
		"Évacuation PVC 3 ml",
	}, "\n")

	chunks := importer.SplitChunks(text)
	require.Len(t, chunks, 2)
	assert.True(t, strings.HasPrefix(chunks[0], "DEMOLITION"))
	assert.True(t, strings.HasPrefix(chunks[1], "PLOMBERIE"))
}

func TestSplitChunks_TitresNumerotes(t *testing.T) {
	text := strings.Join([]string{
		"1. Peinture",
		"Sous-couche 40 m2",
		"2) Sols",
		"Parquet chêne 25 m2",
	}, "\n")

	chunks := importer.SplitChunks(text)
	require.Len(t, chunks, 2)
	assert.Contains(t, chunks[1], "Parquet")
}

func TestSplitChunks_MarqueurRecapitulatif(t *testing.T) {
	text := strings.Join([]string{
		"Dépose cloison 10 m2",
		"Pose placo 10 m2",
		"RÉCAPITULATIF",
		"Total HT 1200 €",
	}, "\n")

	// "RÉCAPITULATIF" et "Total HT" sont tous deux des frontières.
	chunks := importer.SplitChunks(text)
	require.Len(t, chunks, 3)
	assert.Equal(t, "RÉCAPITULATIF", chunks[1])
	assert.True(t, strings.HasPrefix(chunks[2], "Total HT"))
}

func TestSplitChunks_RepliTailleFixe(t *testing.T) {
	// Aucune frontière structurelle et plus de 30 lignes : chunks fixes de 25.
	var lines []string
	for i := 0; i < 60; i++ {
		lines = append(lines, fmt.Sprintf("prestation diverse n°%d", i))
	}
	chunks := importer.SplitChunks(strings.Join(lines, "\n"))
	require.Len(t, chunks, 3)
	assert.Equal(t, 25, len(strings.Split(chunks[0], "\n")))
	assert.Equal(t, 10, len(strings.Split(chunks[2], "\n")))
}

func TestSplitChunks_TexteCourtSansStructure(t *testing.T) {
	text := "une seule prestation\nsans titre ni total"
	assert.Equal(t, []string{text}, importer.SplitChunks(text))
}
