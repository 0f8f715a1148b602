// Package pipeline orchestrates enrichment: discover pages on a business
// website, pick the ones likely to name people, pull their text, and ask
// the model for contact persons.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/mymedia/leadgen-cli/pkg/anthropic"
)

// Oracle answers a single system+user prompt pair with text. It hides the
// model provider from the pipeline so tests can script responses.
type Oracle interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// AnthropicOracle implements Oracle on the Messages API, pacing requests
// so a burst of workers cannot trip provider rate limits.
type AnthropicOracle struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	limiter   *rate.Limiter
	phase     string
}

// NewAnthropicOracle creates a paced oracle. pace is the minimum interval
// between requests; zero disables pacing.
func NewAnthropicOracle(client anthropic.Client, model string, maxTokens int64, pace time.Duration) *AnthropicOracle {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if pace > 0 {
		limiter = rate.NewLimiter(rate.Every(pace), 1)
	}
	return &AnthropicOracle{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
		limiter:   limiter,
		phase:     "enrichment",
	}
}

func (o *AnthropicOracle) Complete(ctx context.Context, system, user string) (string, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "oracle: pacing wait")
	}

	resp, err := o.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     o.model,
		MaxTokens: o.maxTokens,
		System:    anthropic.BuildCachedSystemBlocks(system),
		Messages:  []anthropic.Message{{Role: "user", Content: user}},
	})
	if err != nil {
		return "", eris.Wrap(err, "oracle: create message")
	}

	resp.Usage.LogCost(o.model, o.phase)
	return resp.Text(), nil
}

// cleanJSON extracts a JSON value from text that may contain markdown
// code fences or surrounding prose. openb and closeb select the value
// kind: '{'/'}' for an object, '['/']' for an array.
func cleanJSON(text string, openb, closeb byte) string {
	text = strings.TrimSpace(text)

	// Strip markdown code fences.
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	// Find the outermost value delimiters.
	start := strings.IndexByte(text, openb)
	end := strings.LastIndexByte(text, closeb)
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
