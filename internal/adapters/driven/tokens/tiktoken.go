package tokens

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// fallbackEncoding is used for models tiktoken does not know.
const fallbackEncoding = "cl100k_base"

// Tiktoken counts tokens with the model's BPE encoding.
type Tiktoken struct {
	enc      *tiktoken.Tiktoken
	encoding string
}

// NewTiktoken creates a counter for the given embedding model.
// Unknown models use the cl100k_base encoding.
func NewTiktoken(model string) (*Tiktoken, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err == nil {
		return &Tiktoken{enc: enc, encoding: model}, nil
	}

	enc, err = tiktoken.GetEncoding(fallbackEncoding)
	if err != nil {
		return nil, fmt.Errorf("tiktoken: load encoding: %w", err)
	}
	return &Tiktoken{enc: enc, encoding: fallbackEncoding}, nil
}

// Name identifies the counter.
func (t *Tiktoken) Name() string {
	return "tiktoken:" + t.encoding
}

// Count returns the exact number of tokens in text.
func (t *Tiktoken) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// Truncate returns the text of the first maxTokens tokens.
func (t *Tiktoken) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	ids := t.enc.Encode(text, nil, nil)
	if len(ids) <= maxTokens {
		return text
	}
	return t.enc.Decode(ids[:maxTokens])
}
