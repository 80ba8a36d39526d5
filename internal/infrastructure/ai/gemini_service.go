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

// Vérification à la compilation que GeminiService implémente ExtractionService.
var _ ports.ExtractionService = (*GeminiService)(nil)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s"

// GeminiService adaptateur qui implémente ExtractionService via l'API REST de
// Google Gemini. response_mime_type=application/json force le modèle à
// renvoyer du JSON pur, le nettoyage markdown reste un filet de sécurité.
type GeminiService struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewGeminiService construit l'adaptateur. model est typiquement "gemini-1.5-flash".
func NewGeminiService(apiKey, model string) *GeminiService {
	return &GeminiService{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 90 * time.Second, // filet réseau ; timeout par tentative côté appelant
		},
	}
}

// ── Structures internes de l'API Gemini ───────────────────────────────────────

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  genConfig       `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type genConfig struct {
	ResponseMIMEType string  `json:"response_mime_type"`
	Temperature      float64 `json:"temperature"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ── Implémentation du port ────────────────────────────────────────────────────

// ExtractLines envoie le texte à Gemini avec le prompt du mode demandé et
// renvoie les lignes candidates extraites.
func (s *GeminiService) ExtractLines(ctx context.Context, text string, mode ports.ExtractionMode) ([]ports.ExtractedEntry, error) {
	if s.apiKey == "" {
		return nil, ports.NewExtractionError(ports.ErrKindUnauthorized, fmt.Errorf("GEMINI_API_KEY non configurée"))
	}

	payload := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: systemPromptFor(mode)}}},
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: text}}},
		},
		GenerationConfig: genConfig{
			ResponseMIMEType: "application/json",
			Temperature:      0.2,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, ports.NewExtractionError(ports.ErrKindGeneric, fmt.Errorf("sérialiser la requête: %w", err))
	}

	url := fmt.Sprintf(geminiBaseURL, s.model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, ports.NewExtractionError(ports.ErrKindGeneric, fmt.Errorf("créer la requête HTTP: %w", err))
	}
	req.Header.Set("content-type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ports.NewExtractionError(ports.ErrKindNetwork, fmt.Errorf("appel HTTP Gemini: %w", err))
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, ports.NewExtractionError(ports.ErrKindNetwork, fmt.Errorf("lire la réponse: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		var errResp geminiResponse
		if jsonErr := json.Unmarshal(rawBody, &errResp); jsonErr == nil && errResp.Error != nil {
			return nil, ports.NewExtractionError(kindForStatus(resp.StatusCode),
				fmt.Errorf("Gemini (%d): %s", errResp.Error.Code, errResp.Error.Message))
		}
		return nil, ports.NewExtractionError(kindForStatus(resp.StatusCode),
			fmt.Errorf("Gemini HTTP %d: %s", resp.StatusCode, string(rawBody)))
	}

	var gemResp geminiResponse
	if err := json.Unmarshal(rawBody, &gemResp); err != nil {
		return nil, ports.NewExtractionError(ports.ErrKindMalformed, fmt.Errorf("désérialiser la réponse Gemini: %w", err))
	}
	if len(gemResp.Candidates) == 0 || len(gemResp.Candidates[0].Content.Parts) == 0 {
		return nil, ports.NewExtractionError(ports.ErrKindMalformed, fmt.Errorf("réponse Gemini vide"))
	}

	cleanJSON := extractJSON(gemResp.Candidates[0].Content.Parts[0].Text)
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
