// Package tokencount approximates token counts for prompts sent to the
// generative model, used for metrics and prompt budget observability.
package tokencount

import (
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Counter provides thread-safe token counting.
type Counter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

// DefaultCounter is the process-wide counter.
var DefaultCounter = &Counter{}

func (c *Counter) encoding() (*tiktoken.Tiktoken, error) {
	c.once.Do(func() {
		// Gemini does not publish a tiktoken encoding; cl100k_base is a
		// close enough approximation for budget metrics.
		c.enc, c.err = tiktoken.GetEncoding("cl100k_base")
	})
	return c.enc, c.err
}

// CountTokens counts the approximate number of tokens in text. On encoding
// failure it falls back to the rough 4-chars-per-token estimate.
func (c *Counter) CountTokens(text string) int {
	enc, err := c.encoding()
	if err != nil {
		return len(text) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

// Count uses the default counter.
func Count(text string) int { return DefaultCounter.CountTokens(text) }
