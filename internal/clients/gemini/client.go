// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/andresilva/b3folio/internal/common"
	"github.com/andresilva/b3folio/internal/interfaces"
	"github.com/andresilva/b3folio/internal/models"
)

const DefaultModel = "gemini-2.0-flash"

// Compile-time interface check
var _ interfaces.AIClient = (*Client)(nil)

// Client implements the AIClient interface
type Client struct {
	client *genai.Client
	model  string
	logger *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client: genaiClient,
		model:  DefaultModel,
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// generate sends a prompt and returns the response text.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug().Str("model", c.model).Msg("Generating content")

	contents := genai.Text(prompt)
	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(result)
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	return text, nil
}

// ExtractTransactions parses free-form brokerage statement text into candidate
// transaction records. The model output is treated as untrusted: it is fence-
// stripped, JSON-decoded, and fully re-validated downstream by the ledger
// parser.
func (c *Client) ExtractTransactions(ctx context.Context, text string) (*interfaces.ExtractionResult, error) {
	prompt := buildExtractionPrompt(text)

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return parseExtractionResponse(raw)
}

// extractionEnvelope mirrors the JSON shape the extraction prompt requests.
type extractionEnvelope struct {
	Transactions []models.RawTransaction `json:"transactions"`
	Warnings     []string                `json:"warnings"`
}

// parseExtractionResponse decodes the model's JSON reply. It tolerates both
// the envelope object and a bare top-level array of transactions.
func parseExtractionResponse(raw string) (*interfaces.ExtractionResult, error) {
	clean := cleanModelJSON(raw)

	var envelope extractionEnvelope
	if err := json.Unmarshal([]byte(clean), &envelope); err == nil {
		return &interfaces.ExtractionResult{
			Transactions: envelope.Transactions,
			Warnings:     envelope.Warnings,
		}, nil
	}

	var bare []models.RawTransaction
	if err := json.Unmarshal([]byte(clean), &bare); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}
	return &interfaces.ExtractionResult{Transactions: bare}, nil
}

// buildExtractionPrompt creates the strict-JSON extraction prompt.
func buildExtractionPrompt(text string) string {
	var sb strings.Builder
	sb.WriteString("You are a transaction parser for Brazilian (B3/Bovespa) brokerage statements.\n\n")
	sb.WriteString("Task:\n")
	sb.WriteString("- Parse ALL transactions in the statement text below.\n")
	sb.WriteString("- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n")
	sb.WriteString("- Output a JSON object: {\"transactions\": [...], \"warnings\": [...]}\n\n")
	sb.WriteString("Each transaction object must have these fields:\n")
	sb.WriteString("- \"type\": one of \"CASH_CREDIT\", \"CASH_DEBIT\", \"BUY\", \"SELL_WITHDRAWAL\", \"DIVIDEND\"\n")
	sb.WriteString("- \"ticker\": string, B3 ticker (e.g. \"PETR4\"); omit for pure cash movements\n")
	sb.WriteString("- \"amount\": number, total value in BRL, always positive\n")
	sb.WriteString("- \"price\": number, unit price; omit if unknown\n")
	sb.WriteString("- \"quantity\": number of shares; omit if unknown\n")
	sb.WriteString("- \"date\": string, ISO format \"YYYY-MM-DD\"\n")
	sb.WriteString("- \"notes\": string, original statement description\n\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("- Aportes/depósitos are CASH_CREDIT; resgates/saques are CASH_DEBIT.\n")
	sb.WriteString("- Compras are BUY; vendas are SELL_WITHDRAWAL; proventos/dividendos/JCP are DIVIDEND.\n")
	sb.WriteString("- If a record is ambiguous, skip it and add a warning string instead.\n")
	sb.WriteString("- Return ONLY valid raw JSON. Do NOT wrap the response in code fences.\n")
	sb.WriteString("- Output must begin with \"{\" and end with \"}\".\n\n")
	sb.WriteString("Statement text:\n")
	sb.WriteString(text)
	return sb.String()
}

// Chat answers a question about a portfolio.
func (c *Client) Chat(ctx context.Context, question string, portfolio *models.Portfolio) (string, error) {
	prompt := buildChatPrompt(question, portfolio)
	return c.generate(ctx, prompt)
}

// buildChatPrompt creates the analyst prompt with portfolio context.
func buildChatPrompt(question string, portfolio *models.Portfolio) string {
	var sb strings.Builder
	sb.WriteString("You are a fundamental-analysis assistant for Brazilian (B3/Bovespa) investors.\n")
	sb.WriteString("Answer in Portuguese, concisely, based on the portfolio below. ")
	sb.WriteString("Do not give personalized financial advice; describe the data.\n\n")

	if portfolio != nil {
		sb.WriteString(fmt.Sprintf("Portfolio %q:\n", portfolio.Name))
		sb.WriteString(fmt.Sprintf("- Cash balance: %s\n", common.FormatBRL(portfolio.CashBalance)))
		sb.WriteString(fmt.Sprintf("- Total invested: %s\n", common.FormatBRL(portfolio.TotalInvested)))
		sb.WriteString(fmt.Sprintf("- Total dividends received: %s\n", common.FormatBRL(portfolio.TotalDividends)))
		for _, p := range portfolio.Positions {
			sb.WriteString(fmt.Sprintf("- %s: %.0f shares, average price %s, invested %s\n",
				p.Ticker, p.Quantity, common.FormatBRL(p.AveragePrice), common.FormatBRL(p.Invested)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Question: ")
	sb.WriteString(question)
	return sb.String()
}

// cleanModelJSON strips Markdown fences and surrounding junk the model may
// emit despite instructions, keeping only the outermost JSON value.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Keep from the first '{' or '[' to the matching last bracket.
	objStart := strings.Index(s, "{")
	arrStart := strings.Index(s, "[")
	if arrStart != -1 && (objStart == -1 || arrStart < objStart) {
		if end := strings.LastIndex(s, "]"); end > arrStart {
			return strings.TrimSpace(s[arrStart : end+1])
		}
	}
	if objStart != -1 {
		if end := strings.LastIndex(s, "}"); end > objStart {
			return strings.TrimSpace(s[objStart : end+1])
		}
	}

	return s
}
