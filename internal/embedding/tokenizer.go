package embedding

import (
	"errors"
	"fmt"
	"os"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// ErrTokenizerRequired is returned when the ONNX provider has no tokenizer file.
var ErrTokenizerRequired = errors.New("ONNX embedder requires a tokenizer.json")

// XLMRobertaPadID is the <pad> id of the multilingual sentence-transformers vocabularies.
const XLMRobertaPadID = 1

// Tokenizer produces transformer inputs (input_ids, attention_mask, token_type_ids)
// padded to maxTokens.
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64, err error)
}

// PretrainedTokenizer encodes text with the vocabulary exported next to the model
// (a HuggingFace tokenizer.json).
type PretrainedTokenizer struct {
	tk    *tokenizer.Tokenizer
	padID int64
}

// NewPretrainedTokenizer loads the tokenizer.json at path.
func NewPretrainedTokenizer(path string, padID int64) (*PretrainedTokenizer, error) {
	if path == "" {
		return nil, ErrTokenizerRequired
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open tokenizer: %w", err)
	}
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tokenizer %s: %w", path, err)
	}
	return &PretrainedTokenizer{tk: tk, padID: padID}, nil
}

// Tokenize encodes text with the model's special tokens and fits it to maxTokens.
func (t *PretrainedTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64, err error) {
	enc, err := t.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to tokenize: %w", err)
	}
	inputIDs, attentionMask, tokenTypeIDs = fitSequence(enc.Ids, enc.TypeIds, maxTokens, t.padID)
	return inputIDs, attentionMask, tokenTypeIDs, nil
}

// fitSequence pads ids to maxTokens with padID, or truncates them keeping the final
// (end-of-sequence) token. typeIDs may be shorter than ids.
func fitSequence(ids, typeIDs []int, maxTokens int, padID int64) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens <= 0 {
		maxTokens = 128
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)
	for i := range inputIDs {
		inputIDs[i] = padID
	}

	n := len(ids)
	truncated := n > maxTokens
	if truncated {
		n = maxTokens
	}
	for i := 0; i < n; i++ {
		inputIDs[i] = int64(ids[i])
		attentionMask[i] = 1
		if i < len(typeIDs) {
			tokenTypeIDs[i] = int64(typeIDs[i])
		}
	}
	if truncated {
		inputIDs[n-1] = int64(ids[len(ids)-1])
	}
	return inputIDs, attentionMask, tokenTypeIDs
}

// HashString returns a deterministic non-negative hash of s.
func HashString(s string) int {
	h := 0
	for _, c := range s {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}
	if h < 0 {
		// -MinInt overflows back to itself.
		h = 0
	}
	return h
}
