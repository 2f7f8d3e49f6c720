// ABOUTME: OpenAI-backed capability client for embeddings, transcription, captioning, and completion
// ABOUTME: All hosted-model access goes through this one client with shared retry behavior
package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/secondbrain-labs/cerebro/internal/config"
	"github.com/secondbrain-labs/cerebro/internal/util"
)

// Client wraps the OpenAI API with retry logic for every capability the
// ingestion and query pipelines consume.
type Client struct {
	api                *openai.Client
	chatModel          string
	embeddingModel     openai.EmbeddingModel
	transcriptionModel string
	captionModel       string
	timeout            time.Duration
	maxRetries         int
	retryDelay         time.Duration
}

// NewClient creates a capability client from configuration
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	return &Client{
		api:                openai.NewClient(cfg.OpenAIKey),
		chatModel:          cfg.ChatModel,
		embeddingModel:     openai.EmbeddingModel(cfg.EmbeddingModel),
		transcriptionModel: cfg.TranscriptionModel,
		captionModel:       cfg.CaptionModel,
		timeout:            cfg.Timeout,
		maxRetries:         cfg.MaxRetries,
		retryDelay:         cfg.RetryDelay,
	}, nil
}

// EmbedBatch generates embedding vectors for all texts in one API call,
// preserving input order. Batching bounds external-call volume: a document
// with fifty chunks still costs one embedding request.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.waitBackoff(ctx, attempt); err != nil {
			return nil, err
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := c.api.CreateEmbeddings(callCtx, openai.EmbeddingRequestStrings{
			Input: texts,
			Model: c.embeddingModel,
		})
		cancel()

		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}
		if len(resp.Data) != len(texts) {
			lastErr = fmt.Errorf("attempt %d: got %d embeddings for %d inputs", attempt+1, len(resp.Data), len(texts))
			continue
		}

		vectors := make([][]float64, len(resp.Data))
		for i, item := range resp.Data {
			vectors[i] = toFloat64(item.Embedding)
		}
		return vectors, nil
	}

	return nil, fmt.Errorf("failed to generate embeddings after %d attempts: %w", c.maxRetries+1, lastErr)
}

// Embed generates a single embedding vector
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Transcribe converts audio bytes to text. The filename hint carries the
// container format to the API (extension matters, path does not).
func (c *Client) Transcribe(ctx context.Context, audio []byte, filenameHint string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("missing audio payload")
	}
	if filenameHint == "" {
		filenameHint = "audio.mp3"
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.waitBackoff(ctx, attempt); err != nil {
			return "", err
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := c.api.CreateTranscription(callCtx, openai.AudioRequest{
			Model:    c.transcriptionModel,
			FilePath: filenameHint,
			Reader:   bytes.NewReader(audio),
			Format:   openai.AudioResponseFormatText,
		})
		cancel()

		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}
		return resp.Text, nil
	}

	return "", fmt.Errorf("failed to transcribe audio after %d attempts: %w", c.maxRetries+1, lastErr)
}

const captionPrompt = `Provide a detailed description of this image. Include:
1. Main subjects and objects
2. Actions or activities happening
3. Setting and context
4. Any text visible in the image
5. Colors, mood, and atmosphere

Be thorough and descriptive so this caption can be used for semantic search.`

// Caption describes an image so its content becomes lexically and
// semantically searchable text.
func (c *Client) Caption(ctx context.Context, image []byte, mimeHint string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("missing image payload")
	}
	if mimeHint == "" {
		mimeHint = "image/png"
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeHint, base64.StdEncoding.EncodeToString(image))

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.waitBackoff(ctx, attempt); err != nil {
			return "", err
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := c.api.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model: c.captionModel,
			Messages: []openai.ChatCompletionMessage{
				{
					Role: openai.ChatMessageRoleUser,
					MultiContent: []openai.ChatMessagePart{
						{Type: openai.ChatMessagePartTypeText, Text: captionPrompt},
						{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
					},
				},
			},
			MaxTokens: 500,
		})
		cancel()

		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("attempt %d: no completion choices returned", attempt+1)
			continue
		}
		return resp.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("failed to caption image after %d attempts: %w", c.maxRetries+1, lastErr)
}

// Complete runs a single non-streaming chat completion
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.complete(ctx, systemPrompt, userPrompt, nil)
}

// CompleteJSON runs a completion constrained to emit a JSON object.
// Used by the temporal parser, where free-form prose is useless.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.complete(ctx, systemPrompt, userPrompt, &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	})
}

func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string, format *openai.ChatCompletionResponseFormat) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.waitBackoff(ctx, attempt); err != nil {
			return "", err
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := c.api.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model: c.chatModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt},
			},
			Temperature:    0,
			ResponseFormat: format,
		})
		cancel()

		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("attempt %d: no completion choices returned", attempt+1)
			continue
		}
		return resp.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("failed to complete after %d attempts: %w", c.maxRetries+1, lastErr)
}

// TokenStream delivers completion tokens incrementally. Recv returns
// io.EOF when the model signals completion; Close abandons the call.
type TokenStream interface {
	Recv() (string, error)
	Close() error
}

// CompleteStream opens a streaming chat completion. No retry: a stream
// that fails mid-flight cannot be transparently resumed, so the error
// surfaces to the consumer instead. The call lives until ctx is canceled
// or the stream is closed.
func (c *Client) CompleteStream(ctx context.Context, systemPrompt, userPrompt string) (TokenStream, error) {
	stream, err := c.api.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open completion stream: %w", err)
	}
	return &openaiTokenStream{stream: stream}, nil
}

type openaiTokenStream struct {
	stream *openai.ChatCompletionStream
}

func (s *openaiTokenStream) Recv() (string, error) {
	resp, err := s.stream.Recv()
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Delta.Content, nil
}

func (s *openaiTokenStream) Close() error {
	return s.stream.Close()
}

// waitBackoff sleeps before a retry attempt, honoring cancellation
func (c *Client) waitBackoff(ctx context.Context, attempt int) error {
	if attempt == 0 {
		return nil
	}
	select {
	case <-time.After(util.CalculateBackoff(c.retryDelay, attempt)):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}
