package api

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/dmelnic/storylens/internal/auth"
	"github.com/dmelnic/storylens/internal/graph"
	"github.com/dmelnic/storylens/internal/report"
	"github.com/dmelnic/storylens/internal/similarity"
	"github.com/dmelnic/storylens/internal/storage"
	"github.com/dmelnic/storylens/internal/textproc"
	"github.com/dmelnic/storylens/pkg/models"
)

const maxUploadSize = 10 << 20 // 10 MB

// AnalysisSummary represents one entry in the analysis list response
type AnalysisSummary struct {
	ID            string `json:"id"`
	Filename      string `json:"filename"`
	SentenceCount int    `json:"sentence_count"`
	CreatedAt     string `json:"created_at"`
}

// handleCreateAnalysis accepts a narrative document upload, runs the
// analysis pipeline, and persists the result.
func (s *Server) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	ownerID, err := uuid.Parse(claims.UserID)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	ext := filepath.Ext(header.Filename)
	if ext != ".txt" && ext != ".md" {
		respondError(w, http.StatusBadRequest, "only .txt and .md files are allowed")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read file")
		return
	}

	analysis, err := s.analyzer.AnalyzeText(header.Filename, string(content))
	if err != nil {
		s.logger.Error("analysis failed", "file", header.Filename, "error", err)
		respondError(w, http.StatusUnprocessableEntity, "failed to analyze document")
		return
	}

	result, err := report.JSON(analysis)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to encode analysis")
		return
	}

	record := &storage.Analysis{
		OwnerID:       ownerID,
		Filename:      header.Filename,
		Content:       string(content),
		SentenceCount: analysis.SentenceCount,
		Result:        result,
	}
	if err := s.analyses.Create(r.Context(), record); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save analysis")
		return
	}

	if err := s.persistDetails(r, record.ID, analysis, string(content)); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save analysis details")
		return
	}

	analysis.ID = record.ID.String()
	respondJSON(w, http.StatusCreated, analysis)
}

// persistDetails stores per-character profile vectors and relations for
// a freshly created analysis.
func (s *Server) persistDetails(r *http.Request, analysisID uuid.UUID, analysis *models.Analysis, content string) error {
	sentences, err := textproc.SegmentSentences(textproc.CleanText(content))
	if err != nil {
		return err
	}

	characters := make([]*storage.Character, 0, len(analysis.Characters))
	for _, c := range analysis.Characters {
		profile := similarity.ProfileVector(c, sentences)
		characters = append(characters, &storage.Character{
			AnalysisID:   analysisID,
			Name:         c.Name,
			Aliases:      c.Aliases,
			MentionCount: c.MentionCount,
			Profile:      pgvector.NewVector(toFloat32(profile)),
		})
	}
	if err := s.characters.CreateBatch(r.Context(), characters); err != nil {
		return err
	}

	relations := make([]*storage.Relation, 0, len(analysis.Relations))
	for _, rel := range analysis.Relations {
		relations = append(relations, &storage.Relation{
			AnalysisID:      analysisID,
			CharacterA:      rel.CharacterA,
			CharacterB:      rel.CharacterB,
			Cooccurrence:    rel.Cooccurrence,
			Proximity:       rel.Proximity,
			RelationTypes:   rel.RelationTypes,
			PrimaryRelation: rel.PrimaryRelation,
			Confidence:      rel.Confidence,
			Strength:        rel.Strength,
		})
	}
	return s.relations.CreateBatch(r.Context(), relations)
}

// handleListAnalyses lists the authenticated user's analyses
func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	ownerID, err := uuid.Parse(claims.UserID)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	records, err := s.analyses.GetByOwnerID(r.Context(), ownerID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch analyses")
		return
	}

	response := make([]AnalysisSummary, 0, len(records))
	for _, rec := range records {
		response = append(response, AnalysisSummary{
			ID:            rec.ID.String(),
			Filename:      rec.Filename,
			SentenceCount: rec.SentenceCount,
			CreatedAt:     rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	respondJSON(w, http.StatusOK, response)
}

// handleGetAnalysis returns the stored analysis result
func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	record, ok := s.fetchOwnedAnalysis(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, json.RawMessage(record.Result))
}

// handleGetReport renders the stored analysis in the requested format
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	record, ok := s.fetchOwnedAnalysis(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = report.FormatJSON
	}

	var analysis models.Analysis
	if err := json.Unmarshal(record.Result, &analysis); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to decode stored analysis")
		return
	}

	switch format {
	case report.FormatJSON:
		respondJSON(w, http.StatusOK, json.RawMessage(record.Result))
	case report.FormatMarkdown:
		out, err := report.Markdown(&analysis)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to render report")
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(out))
	case report.FormatHTML:
		out, err := report.HTML(&analysis)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to render report")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(out))
	default:
		respondError(w, http.StatusBadRequest, "unknown format")
	}
}

// handleGetGraph returns the relationship graph in json, dot, or svg
// format
func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	record, ok := s.fetchOwnedAnalysis(w, r)
	if !ok {
		return
	}

	var analysis models.Analysis
	if err := json.Unmarshal(record.Result, &analysis); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to decode stored analysis")
		return
	}

	g := graph.Build(&analysis)

	switch r.URL.Query().Get("format") {
	case "", "json":
		respondJSON(w, http.StatusOK, g)
	case "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		w.Write([]byte(graph.DOT(g)))
	case "svg":
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write([]byte(graph.SVG(g)))
	default:
		respondError(w, http.StatusBadRequest, "unknown format")
	}
}

// handleGetSimilarCharacters finds stored characters with context
// profiles similar to the named character
func (s *Server) handleGetSimilarCharacters(w http.ResponseWriter, r *http.Request) {
	record, ok := s.fetchOwnedAnalysis(w, r)
	if !ok {
		return
	}

	name := chi.URLParam(r, "name")
	characters, err := s.characters.GetByAnalysisID(r.Context(), record.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch characters")
		return
	}

	var target *storage.Character
	for _, c := range characters {
		if c.Name == name {
			target = c
			break
		}
	}
	if target == nil {
		respondError(w, http.StatusNotFound, "character not found")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	threshold, _ := strconv.ParseFloat(r.URL.Query().Get("threshold"), 64)
	if threshold <= 0 {
		threshold = similarity.DefaultThreshold
	}

	matches, err := s.characters.FindSimilar(r.Context(), target.Profile, limit, threshold)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to search similar characters")
		return
	}

	type SimilarCharacter struct {
		Name       string  `json:"name"`
		AnalysisID string  `json:"analysis_id"`
		Similarity float64 `json:"similarity"`
	}

	response := make([]SimilarCharacter, 0, len(matches))
	for _, m := range matches {
		if m.Character.ID == target.ID {
			continue
		}
		response = append(response, SimilarCharacter{
			Name:       m.Character.Name,
			AnalysisID: m.Character.AnalysisID.String(),
			Similarity: m.Similarity,
		})
	}

	respondJSON(w, http.StatusOK, response)
}

// handleDeleteAnalysis removes an analysis and its derived records
func (s *Server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	record, ok := s.fetchOwnedAnalysis(w, r)
	if !ok {
		return
	}

	if err := s.relations.DeleteByAnalysisID(r.Context(), record.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete relations")
		return
	}
	if err := s.characters.DeleteByAnalysisID(r.Context(), record.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete characters")
		return
	}
	if err := s.analyses.Delete(r.Context(), record.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete analysis")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// fetchOwnedAnalysis loads the analysis from the URL parameter and
// verifies the authenticated user owns it. On failure it writes the
// error response and returns false.
func (s *Server) fetchOwnedAnalysis(w http.ResponseWriter, r *http.Request) (*storage.Analysis, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "analysisID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid analysis id")
		return nil, false
	}

	record, err := s.analyses.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch analysis")
		return nil, false
	}
	if record == nil {
		respondError(w, http.StatusNotFound, "analysis not found")
		return nil, false
	}

	claims, ok := auth.GetUserFromContext(r.Context())
	if !ok || record.OwnerID.String() != claims.UserID {
		respondError(w, http.StatusForbidden, "access denied")
		return nil, false
	}

	return record, true
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
