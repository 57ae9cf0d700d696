package embedding

// ONNXConfig describes an exported sentence-transformers model.
type ONNXConfig struct {
	ModelPath   string
	LibraryPath string // onnxruntime shared library; empty uses the platform default
	Dimensions  int
	MaxTokens   int
	// InputNames lists the graph inputs to feed. Recognized names are input_ids,
	// attention_mask and token_type_ids.
	InputNames []string
	OutputName string
	// MeanPool averages a token-level output (1 x MaxTokens x Dimensions) over the
	// attention mask. When false the output is read as a pooled (1 x Dimensions) vector.
	MeanPool bool
	// Tokenizer must match the model's vocabulary; see NewPretrainedTokenizer.
	Tokenizer Tokenizer
}

func (c ONNXConfig) withDefaults() ONNXConfig {
	if c.Dimensions <= 0 {
		c.Dimensions = 768
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 128
	}
	if len(c.InputNames) == 0 {
		c.InputNames = []string{"input_ids", "attention_mask"}
	}
	if c.OutputName == "" {
		c.OutputName = "last_hidden_state"
		c.MeanPool = true
	}
	return c
}

// meanPool writes into dst the mean of the token vectors in hidden whose mask is set.
// hidden is laid out row-major as tokens x len(dst).
func meanPool(dst, hidden []float32, mask []int64) {
	dims := len(dst)
	for i := range dst {
		dst[i] = 0
	}
	var n float32
	for tok, m := range mask {
		if m == 0 {
			continue
		}
		row := hidden[tok*dims : (tok+1)*dims]
		for i, v := range row {
			dst[i] += v
		}
		n++
	}
	if n == 0 {
		return
	}
	for i := range dst {
		dst[i] /= n
	}
}
