package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/renovpro/devis-api/internal/application/ports"
)

// Vérification à la compilation qu'AnthropicService implémente ExtractionService.
var _ ports.ExtractionService = (*AnthropicService)(nil)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion     = "2023-06-01"
)

// AnthropicService adaptateur qui implémente ExtractionService via l'API REST
// d'Anthropic (Claude). Utilise net/http de la librairie standard ; le SDK
// officiel n'est pas requis.
type AnthropicService struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewAnthropicService construit l'adaptateur.
// model est typiquement "claude-3-5-haiku-20241022".
// Si apiKey est vide, les appels renvoient une erreur descriptive plutôt qu'un panic.
func NewAnthropicService(apiKey, model string) *AnthropicService {
	return &AnthropicService{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			// Timeout réseau de filet ; l'appelant impose en plus un timeout
			// par tentative via la politique de retry.
			Timeout: 90 * time.Second,
		},
	}
}

// ── Structures internes du protocole Anthropic Messages API ───────────────────

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// ── Implémentation du port ────────────────────────────────────────────────────

// ExtractLines envoie le texte à Claude avec le prompt du mode demandé et
// renvoie les lignes candidates extraites.
func (s *AnthropicService) ExtractLines(ctx context.Context, text string, mode ports.ExtractionMode) ([]ports.ExtractedEntry, error) {
	if s.apiKey == "" {
		return nil, ports.NewExtractionError(ports.ErrKindUnauthorized, fmt.Errorf("ANTHROPIC_API_KEY non configurée"))
	}

	payload := anthropicRequest{
		Model:     s.model,
		MaxTokens: 4096,
		System:    systemPromptFor(mode),
		Messages: []anthropicMessage{
			{Role: "user", Content: text},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, ports.NewExtractionError(ports.ErrKindGeneric, fmt.Errorf("sérialiser la requête: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicMessagesURL, bytes.NewReader(body))
	if err != nil {
		return nil, ports.NewExtractionError(ports.ErrKindGeneric, fmt.Errorf("créer la requête HTTP: %w", err))
	}
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			// Timeout de tentative ou annulation : la politique de retry classifie.
			return nil, ctx.Err()
		}
		return nil, ports.NewExtractionError(ports.ErrKindNetwork, fmt.Errorf("appel HTTP Anthropic: %w", err))
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, ports.NewExtractionError(ports.ErrKindNetwork, fmt.Errorf("lire la réponse: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		var errResp anthropicResponse
		if jsonErr := json.Unmarshal(rawBody, &errResp); jsonErr == nil && errResp.Error != nil {
			return nil, ports.NewExtractionError(kindForStatus(resp.StatusCode),
				fmt.Errorf("Anthropic (%s): %s", errResp.Error.Type, errResp.Error.Message))
		}
		return nil, ports.NewExtractionError(kindForStatus(resp.StatusCode),
			fmt.Errorf("Anthropic HTTP %d: %s", resp.StatusCode, string(rawBody)))
	}

	var anthResp anthropicResponse
	if err := json.Unmarshal(rawBody, &anthResp); err != nil {
		return nil, ports.NewExtractionError(ports.ErrKindMalformed, fmt.Errorf("désérialiser la réponse Anthropic: %w", err))
	}
	if len(anthResp.Content) == 0 {
		return nil, ports.NewExtractionError(ports.ErrKindMalformed, fmt.Errorf("réponse Claude vide"))
	}

	// Parse défensif : n'extraire que le bloc JSON même si le modèle ajoute du texte.
	cleanJSON := extractJSON(anthResp.Content[0].Text)
	if cleanJSON == "" {
		return nil, ports.NewExtractionError(ports.ErrKindMalformed,
			fmt.Errorf("pas de JSON valide dans la réponse du modèle"))
	}

	var extracted extractionPayload
	if err := json.Unmarshal([]byte(cleanJSON), &extracted); err != nil {
		return nil, ports.NewExtractionError(ports.ErrKindMalformed, fmt.Errorf("parser le JSON extrait: %w", err))
	}
	return extracted.Lignes, nil
}
