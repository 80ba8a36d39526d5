package importer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/renovpro/devis-api/internal/application/importer"
)

func TestLooksLikeExistingQuote_DevisColle(t *testing.T) {
	text := strings.Join([]string{
		"1.1 Dépose du carrelage existant 12 m² 35 €",
		"1.2 Ragréage du sol 12 m² 28 €",
		"TOTAL HT : 756 €",
	}, "\n")
	assert.True(t, importer.LooksLikeExistingQuote(text))
}

func TestLooksLikeExistingQuote_DescriptionLibre(t *testing.T) {
	text := "Je voudrais refaire entièrement la salle de bain, avec une douche " +
		"à l'italienne et un meuble vasque."
	assert.False(t, importer.LooksLikeExistingQuote(text))
}

func TestLooksLikeExistingQuote_UnSeulMotifInsuffisant(t *testing.T) {
	// Un seul indice (prix) : le vote exige au moins deux motifs.
	assert.False(t, importer.LooksLikeExistingQuote("Le budget est d'environ 5000 €."))
}

func TestLooksLikeExistingQuote_AccentsEtExposants(t *testing.T) {
	// "M²" et "RÉCAPITULATIF" passent par le repli Unicode avant détection.
	text := "Pose de parquet 25 M² à 45 € / M²"
	assert.True(t, importer.LooksLikeExistingQuote(text))
}

func TestEstimateLineCount_LignesChiffrables(t *testing.T) {
	text := strings.Join([]string{
		"PEINTURE",
		"Sous-couche murs 40 m2",
		"Deux couches de finition 40 m2",
		"",
		"Nettoyage de fin de chantier 120 €",
	}, "\n")
	// 3 lignes portent quantité ou prix ; le plancher (4×6/10 = 2) ne joue pas.
	assert.Equal(t, 3, importer.EstimateLineCount(text))
}

func TestEstimateLineCount_PlancherSurTexteNonChiffre(t *testing.T) {
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = "description sans quantité ni prix"
	}
	assert.Equal(t, 6, importer.EstimateLineCount(strings.Join(lines, "\n")))
}

func TestEstimateLineCount_TexteVide(t *testing.T) {
	assert.Equal(t, 0, importer.EstimateLineCount(""))
	assert.Equal(t, 0, importer.EstimateLineCount("\n\n  \n"))
}
