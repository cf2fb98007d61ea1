package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Client speaks to a Gemini-compatible endpoint for both transcription and
// field extraction. Two model handles because extraction pins the JSON
// response format while transcription must return plain text.
type Client struct {
	transcriber llms.Model
	extractor   llms.Model
}

func InitClient() (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}

	endpoint := os.Getenv("GEMINI_API_ENDPOINT")
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-1.5-flash"
	}

	transcriber, err := openai.New(clientOptions(apiKey, endpoint, model)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcription client: %w", err)
	}

	extractor, err := openai.New(append(
		clientOptions(apiKey, endpoint, model),
		openai.WithResponseFormat(&openai.ResponseFormat{
			Type: "json_object",
		}),
	)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction client: %w", err)
	}

	return &Client{transcriber: transcriber, extractor: extractor}, nil
}

// clientOptions assembles the shared connection options. An empty endpoint
// keeps the client's default base URL.
func clientOptions(apiKey, endpoint, model string) []openai.Option {
	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}
	if endpoint != "" {
		opts = append(opts, openai.WithBaseURL(endpoint))
	}
	return opts
}

const transcribePrompt = "Ovo je audio snimak. Vrati samo transkript, ništa drugo. " +
	"Jezik je srpski (ili miksovani srpski/engleski)."

const extractPrompt = `Analiziraj ovu izjavu o terminu i ekstraktuj strukturovane podatke:

%q

Vrati JSON sa sledećim poljima (ako postoje):
{
  "title": "naslov aktivnosti",
  "start_time": "ISO format ili relativno vreme (npr. 'sutra 14:00')",
  "duration_minutes": broj,
  "category": "rad|zdravlje|privatno|slobodno_vreme",
  "priority": "low|medium|high|critical",
  "location": "lokacija ako postoji",
  "person": "osoba ako se spominje",
  "urgency_level": 0.0 do 1.0,
  "confidence": 0.0 do 1.0,
  "emotion": "calm|neutral|stressed|excited"
}

Vrati SAMO JSON.`

// Transcribe sends the audio inline and returns the raw transcript, empty
// when the model heard nothing.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	resp, err := c.transcriber.GenerateContent(ctx, []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(transcribePrompt),
				llms.BinaryPart("audio/mp3", audio),
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

// Extract asks for a best-effort structured guess over the transcript. The
// payload is returned as-is; the scheduling normalizer owns validation.
func (c *Client) Extract(ctx context.Context, transcript string) ([]byte, error) {
	resp, err := c.extractor.GenerateContent(ctx, []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(fmt.Sprintf(extractPrompt, transcript)),
			},
		},
	}, llms.WithTemperature(0.2))
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return []byte("{}"), nil
	}
	return []byte(resp.Choices[0].Content), nil
}
