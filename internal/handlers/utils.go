package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/synapserag/synapse/internal/api"
	"github.com/synapserag/synapse/internal/config"
	"github.com/synapserag/synapse/internal/domain/commonModels"
	"github.com/synapserag/synapse/internal/rag"
	"github.com/synapserag/synapse/pkg/logger_i"
)

var (
	ragService rag.Service
	logRH      *logger_i.Logger
)

// InitHandlers wires the handler package to its service. Called once from
// main before the router is built.
func InitHandlers(service rag.Service) {
	ragService = service
	logRH = logger_i.NewLogger("RequestHandler")
}

const genericErrorDetail = "An internal server error occurred. Please try again later."

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// can't send a clean status code at this point
		logRH.Error("Error encoding response", "error", err)
	}
}

func writeErrorResponse(w http.ResponseWriter, httpCode int, detail string) {
	writeJsonResponse(w, httpCode, api.ErrorResponse{Detail: detail})
}

// mapError translates the error taxonomy to a status code and client-safe
// detail. Unavailable dependencies keep their message so the caller knows
// which service failed; everything unrecognized collapses to the generic 500
// and is only detailed in the server log.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, commonModels.ErrUnsupportedFormat):
		return http.StatusBadRequest, msgUnsupportedType
	case errors.Is(err, commonModels.ErrNoExtractableText):
		return http.StatusBadRequest, "No text could be extracted from the document."
	case errors.Is(err, commonModels.ErrValidation):
		return http.StatusBadRequest, strings.TrimPrefix(err.Error(), commonModels.ErrValidation.Error()+": ")
	case errors.Is(err, commonModels.ErrNotFound):
		return http.StatusNotFound, "Document not found"
	case errors.Is(err, commonModels.ErrEmbeddingUnavailable):
		return http.StatusServiceUnavailable, "Embedding service is not available: " + err.Error() + ". Please check your GEMINI_API_KEY environment variable."
	case errors.Is(err, commonModels.ErrLLMUnavailable):
		return http.StatusServiceUnavailable, "LLM service is not available: " + err.Error() + ". Please check your DEEPSEEK_API_KEY environment variable."
	default:
		return http.StatusInternalServerError, genericErrorDetail
	}
}

// allowedExtension gates uploads before anything is written past the request
// buffer.
func allowedExtension(fileName string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".pdf", ".docx", ".doc", ".txt":
		return ext, true
	default:
		return ext, false
	}
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.Warn("context error", ctx.Err())
		return false
	}

	select {
	case <-ctx.Done():
		logRH.Warn("context cancelled")
		return false
	default:
		return true
	}
}

func getTargetDirectory() (string, error) {
	root, err := os.Getwd()
	if err != nil {
		return "", err
	}

	targetDir := filepath.Join(root, config.UploadTempDir)
	if err := os.MkdirAll(targetDir, 0750); err != nil {
		return "", err
	}
	return targetDir, nil
}

func toAPISources(sources []rag.Source) []api.Source {
	out := make([]api.Source, 0, len(sources))
	for _, s := range sources {
		out = append(out, api.Source{
			FileName: s.FileName,
			Page:     s.Page,
			ChunkId:  s.ChunkId,
			Score:    s.Score,
			Text:     s.Text,
		})
	}
	return out
}
