package config

// DefaultONNXModelFile is looked up in the models directory when embedding.model_path is unset.
const DefaultONNXModelFile = "paraphrase-multilingual-mpnet-base-v2.onnx"

// DefaultTokenizerFile is the exported vocabulary looked up next to the ONNX model when
// embedding.tokenizer_path is unset.
const DefaultTokenizerFile = "tokenizer.json"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.ReadTimeoutSec <= 0 {
		cfg.Server.ReadTimeoutSec = 10
	}
	if cfg.Server.WriteTimeoutSec <= 0 {
		cfg.Server.WriteTimeoutSec = 60
	}
	if cfg.Server.RequestTimeoutSec <= 0 {
		cfg.Server.RequestTimeoutSec = 60
	}
	if cfg.Server.ShutdownSec <= 0 {
		cfg.Server.ShutdownSec = 10
	}
	if cfg.Models.Dir == "" {
		cfg.Models.Dir = "./models"
	}
	if cfg.Models.IndexFile == "" {
		cfg.Models.IndexFile = "faiss_index.bin"
	}
	if cfg.Models.RecordsFile == "" {
		cfg.Models.RecordsFile = "records.db"
	}
	if cfg.Models.IndexType == "" {
		cfg.Models.IndexType = "faiss"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 768
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 128
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 1024
	}
	if cfg.Embedding.OpenAI.Model == "" {
		cfg.Embedding.OpenAI.Model = "paraphrase-multilingual-mpnet-base-v2"
	}
	if cfg.Preprocess.CacheSize == 0 {
		cfg.Preprocess.CacheSize = 1024
	}
}
