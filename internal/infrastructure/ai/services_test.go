package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renovpro/devis-api/internal/application/ports"
)

func TestAnthropicService_CleManquante(t *testing.T) {
	svc := NewAnthropicService("", "claude-3-5-haiku-20241022")
	_, err := svc.ExtractLines(context.Background(), "texte", ports.ModeGenerate)
	require.Error(t, err)
	assert.Equal(t, ports.ErrKindUnauthorized, ports.KindOf(err))
}

func TestGeminiService_CleManquante(t *testing.T) {
	svc := NewGeminiService("", "gemini-2.0-flash")
	_, err := svc.ExtractLines(context.Background(), "texte", ports.ModeParse)
	require.Error(t, err)
	assert.Equal(t, ports.ErrKindUnauthorized, ports.KindOf(err))
}
