package models

// SearchResult is one similar project. SimilarityScore is the raw score scaled to 0-100
// and rounded to two decimals.
type SearchResult struct {
	DataPAID        int64   `json:"data_pa_id"`
	Title           string  `json:"judul_pa"`
	SimilarityScore float64 `json:"similarity_score"`
	Platform        string  `json:"platform"`
	Category        string  `json:"kategori"`
	Techs           string  `json:"teknologi"`
	AcademicYear    string  `json:"tahun_ajaran"`
	Supervisor      string  `json:"dosen_pembimbing"`
	Student         string  `json:"mahasiswa"`
}

// NewSearchResult maps a record and its percentage score to a result.
func NewSearchResult(r *Record, score float64) *SearchResult {
	return &SearchResult{
		DataPAID:        r.DataPAID,
		Title:           r.Title,
		SimilarityScore: score,
		Platform:        r.Platform,
		Category:        r.Category,
		Techs:           r.Techs,
		AcademicYear:    r.AcademicYear,
		Supervisor:      r.Supervisor,
		Student:         r.Student,
	}
}

// SearchResponse is the response for a search request. Results are sorted by
// SimilarityScore descending and hold at most five entries.
type SearchResponse struct {
	Results           []*SearchResult `json:"results"`
	DetectedPlatforms []string        `json:"detected_platforms"`
	DetectedTechs     []string        `json:"detected_techs"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// StatusResponse describes the loaded model assets.
type StatusResponse struct {
	ModelLoaded         bool   `json:"model_loaded"`
	RecordCount         int    `json:"record_count"`
	IndexSize           int    `json:"index_size"`
	IndexType           string `json:"index_type"`
	EmbeddingProvider   string `json:"embedding_provider"`
	EmbeddingDimensions int    `json:"embedding_dimensions"`
	Platforms           int    `json:"platforms"`
	ModelDirBytes       int64  `json:"model_dir_bytes"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
