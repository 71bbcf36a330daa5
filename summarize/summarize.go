package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// MaxInputLength is the number of characters of document text sent to the model.
const MaxInputLength = 45000

// TruncationMarker is appended to text that was cut at MaxInputLength.
const TruncationMarker = "..."

type Params struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
}

var DefaultParams = Params{
	MaxTokens:   1024,
	Temperature: 0.3,
	TopP:        0.9,
}

const promptTemplate = `Task: Write a comprehensive, well-structured summary of the following document.

Instructions:
1. Identify and summarise the main ideas and key points.
2. Organise the summary into clear, readable paragraphs.
3. Write in the same language as the original document.
4. Aim for roughly 15-25%% of the length of the original text.
5. Focus on the most relevant and important information.

DOCUMENT TO SUMMARISE:
---
%s
---

Provide a structured, informative and easy to understand summary:`

// Prompt returns the model prompt for the text, truncating it if required.
func Prompt(text string) string {
	text, _ = Truncate(text)
	return fmt.Sprintf(promptTemplate, text)
}

// Truncate cuts text to MaxInputLength characters and appends the TruncationMarker.
func Truncate(text string) (s string, truncated bool) {
	var count int
	for i := range text {
		if count == MaxInputLength {
			return text[:i] + TruncationMarker, true
		}
		count++
	}
	return text, false
}

func New(llm llms.Model) *Summarizer {
	return &Summarizer{
		llm: llm,
	}
}

type Summarizer struct {
	llm llms.Model
}

func (s *Summarizer) Summarize(ctx context.Context, text string, p Params) (summary string, err error) {
	var sb strings.Builder
	f := func(ctx context.Context, chunk []byte) error {
		_, err := sb.Write(chunk)
		return err
	}
	resp, err := s.llm.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, Prompt(text)),
	},
		llms.WithMaxTokens(p.MaxTokens),
		// The Hugging Face client only sends the token limit as max_length.
		llms.WithMaxLength(p.MaxTokens),
		llms.WithTemperature(p.Temperature),
		llms.WithTopP(p.TopP),
		llms.WithStreamingFunc(f),
	)
	if err != nil {
		return "", &InferenceError{Err: err}
	}
	// Providers that don't stream only return the complete content.
	summary = sb.String()
	if summary == "" && resp != nil && len(resp.Choices) > 0 {
		summary = resp.Choices[0].Content
	}
	if strings.TrimSpace(summary) == "" {
		return "", &InferenceError{Err: ErrEmptyResponse}
	}
	return summary, nil
}

var ErrEmptyResponse = errors.New("empty response")

type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed: %v", e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}
