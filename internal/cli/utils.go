// Package cli provides output and HTTP client helpers for the serupa command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/serupa/internal/models"
	"github.com/hyperjump/serupa/internal/tagger"
	"github.com/hyperjump/serupa/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteSearchResults writes search results to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, response)
	}
	fmt.Fprintf(w, "\nFound %d similar projects\n", len(response.Results))
	writeList(w, "Detected platforms", response.DetectedPlatforms)
	writeList(w, "Detected techs", response.DetectedTechs)
	fmt.Fprintln(w)
	for i, r := range response.Results {
		writeOneResult(w, i+1, r)
	}
	return nil
}

func writeOneResult(w io.Writer, rank int, r *models.SearchResult) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "#%d | %.2f%% | ID: %d\n", rank, r.SimilarityScore, r.DataPAID)
	fmt.Fprintf(w, "Title: %s\n", utils.Truncate(r.Title, 120))
	if r.Platform != "" || r.Category != "" {
		fmt.Fprintf(w, "Platform: %s | Category: %s\n", r.Platform, r.Category)
	}
	if r.Techs != "" {
		fmt.Fprintf(w, "Techs: %s\n", r.Techs)
	}
	if r.AcademicYear != "" {
		fmt.Fprintf(w, "Year: %s\n", r.AcademicYear)
	}
	if r.Supervisor != "" {
		fmt.Fprintf(w, "Supervisor: %s\n", r.Supervisor)
	}
	if r.Student != "" {
		fmt.Fprintf(w, "Students: %s\n", r.Student)
	}
	fmt.Fprintln(w)
}

// WriteDetection writes the tagger output for a text.
func WriteDetection(w io.Writer, d tagger.Detection, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, d)
	}
	writeList(w, "Detected platforms", d.Platforms)
	writeList(w, "Detected techs", d.Techs)
	return nil
}

// Normalized is the output of the normalize command.
type Normalized struct {
	Input         string   `json:"input"`
	Normalized    string   `json:"normalized"`
	Techs         string   `json:"techs,omitempty"`
	TechPlatforms []string `json:"tech_platforms,omitempty"`
}

// WriteNormalized writes normalizer output.
func WriteNormalized(w io.Writer, n Normalized, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, n)
	}
	fmt.Fprintf(w, "Normalized: %s\n", n.Normalized)
	if n.Techs != "" {
		fmt.Fprintf(w, "Techs: %s\n", n.Techs)
		writeList(w, "Tech platforms", n.TechPlatforms)
	}
	return nil
}

// WriteStatus writes the server or local status.
func WriteStatus(w io.Writer, s *models.StatusResponse, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, s)
	}
	fmt.Fprintf(w, "Model loaded: %v\n", s.ModelLoaded)
	if !s.ModelLoaded {
		return nil
	}
	fmt.Fprintf(w, "Records: %d\n", s.RecordCount)
	fmt.Fprintf(w, "Index: %s (%d vectors)\n", s.IndexType, s.IndexSize)
	fmt.Fprintf(w, "Embedding: %s (%d dimensions)\n", s.EmbeddingProvider, s.EmbeddingDimensions)
	fmt.Fprintf(w, "Platforms: %d\n", s.Platforms)
	fmt.Fprintf(w, "Model directory: %s\n", FormatBytes(s.ModelDirBytes))
	return nil
}

func writeList(w io.Writer, label string, items []string) {
	if len(items) == 0 {
		fmt.Fprintf(w, "%s: -\n", label)
		return
	}
	fmt.Fprintf(w, "%s: %s\n", label, strings.Join(items, ", "))
}

// FormatBytes renders n with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
