// Package gemini extracts invoice line items from photos with the Gemini
// generative language API.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/custodia-labs/finvoice/internal/core/domain"
	"github.com/custodia-labs/finvoice/internal/core/ports/driven"
	"github.com/custodia-labs/finvoice/internal/logger"
)

// Ensure Scanner implements the interface.
var _ driven.ItemScanner = (*Scanner)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.5-flash-image"
	DefaultTimeout = 60 * time.Second
)

// fallbackPrompt is used when no prompt store is configured.
const fallbackPrompt = "Analyze this receipt or invoice image. Extract the line items. " +
	"Return a list of items with description, quantity (default to 1 if missing), " +
	"and price per unit (as a number, remove currency symbols). " +
	"Ignore totals and subtotals, just get the items."

// Config holds configuration for the Gemini scanner.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// BaseURL is the API base URL (default: DefaultBaseURL).
	BaseURL string

	// Model is the model name (default: DefaultModel).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// RateLimit bounds request throughput (default: DefaultRateLimit).
	RateLimit RateLimitConfig
}

// Scanner implements driven.ItemScanner over HTTP.
type Scanner struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
	prompts driven.PromptStore
	limiter *RateLimiter
	newID   func() string
}

// New creates a Gemini scanner. prompts may be nil.
func New(cfg Config, prompts driven.PromptStore) (*Scanner, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key is required", domain.ErrScannerUnavailable)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Scanner{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		prompts: prompts,
		limiter: NewRateLimiter(cfg.RateLimit),
		newID:   uuid.NewString,
	}, nil
}

// generateRequest is the :generateContent request body.
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType"`
	ResponseSchema   *schema `json:"responseSchema"`
}

type schema struct {
	Type       string             `json:"type"`
	Items      *schema            `json:"items,omitempty"`
	Properties map[string]*schema `json:"properties,omitempty"`
	Required   []string           `json:"required,omitempty"`
}

// itemsSchema constrains the model output to an array of items.
var itemsSchema = &schema{
	Type: "ARRAY",
	Items: &schema{
		Type: "OBJECT",
		Properties: map[string]*schema{
			"description": {Type: "STRING"},
			"quantity":    {Type: "NUMBER"},
			"price":       {Type: "NUMBER"},
		},
		Required: []string{"description"},
	},
}

// generateResponse is the :generateContent response body.
type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// scannedItem is one element of the model output.
type scannedItem struct {
	Description string           `json:"description"`
	Quantity    *decimal.Decimal `json:"quantity"`
	Price       *decimal.Decimal `json:"price"`
}

// Scan sends the image to the model and converts its answer to line items.
func (s *Scanner) Scan(ctx context.Context, image []byte, mimeType string) ([]domain.LineItem, error) {
	prompt, err := s.prompt()
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{
			{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}},
			{Text: prompt},
		}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   itemsSchema,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", s.baseURL, url.PathEscape(s.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	done := logger.Timed("gemini scan")
	resp, err := s.client.Do(req)
	done()
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %w", domain.ErrScanFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrScanFailed, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		backoff := s.limiter.RecordRateLimitError(resp.Header.Get("Retry-After"))
		return nil, fmt.Errorf("%w: retry in %s", domain.ErrRateLimited, backoff.Round(time.Second))
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return nil, fmt.Errorf("%w: decode response (status %d): %w", domain.ErrScanFailed, resp.StatusCode, err)
	}
	if genResp.Error != nil {
		return nil, fmt.Errorf("%w: gemini error %s: %s", domain.ErrScanFailed, genResp.Error.Status, genResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: gemini error (status %d)", domain.ErrScanFailed, resp.StatusCode)
	}

	text := responseText(genResp)
	if text == "" {
		return []domain.LineItem{}, nil
	}
	return s.parseItems(text)
}

func (s *Scanner) prompt() (string, error) {
	if s.prompts == nil {
		return fallbackPrompt, nil
	}
	prompt, err := s.prompts.Load(driven.PromptScanItems)
	if err != nil {
		logger.Warn("load scan prompt: %v", err)
		return fallbackPrompt, nil
	}
	return prompt, nil
}

// parseItems converts the model's JSON answer to line items.
// Missing or zero quantities become 1 and missing prices 0.
func (s *Scanner) parseItems(text string) ([]domain.LineItem, error) {
	var scanned []scannedItem
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &scanned); err != nil {
		return nil, fmt.Errorf("%w: model returned invalid items: %w", domain.ErrScanFailed, err)
	}

	items := make([]domain.LineItem, 0, len(scanned))
	for _, sc := range scanned {
		item := domain.LineItem{
			ID:          s.newID(),
			Description: strings.TrimSpace(sc.Description),
			Quantity:    decimal.NewFromInt(domain.DefaultItemQuantity),
			UnitPrice:   decimal.Zero,
		}
		if sc.Quantity != nil && !sc.Quantity.IsZero() {
			item.Quantity = *sc.Quantity
		}
		if sc.Price != nil {
			item.UnitPrice = *sc.Price
		}
		items = append(items, item)
	}
	return items, nil
}

func responseText(resp generateResponse) string {
	var b strings.Builder
	for _, c := range resp.Candidates {
		for _, p := range c.Content.Parts {
			b.WriteString(p.Text)
		}
		if b.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(b.String())
}

// stripCodeFence removes a surrounding ```json fence.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
