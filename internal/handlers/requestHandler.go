package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/synapserag/synapse/internal/adapter/utils"
	"github.com/synapserag/synapse/internal/api"
	"github.com/synapserag/synapse/internal/config"
	"github.com/synapserag/synapse/internal/rag/embedding/googleEmbedding"
	"github.com/synapserag/synapse/internal/rag/llm/deepseek"
)

// localized upload validation messages, kept byte-for-byte stable because
// the frontend matches on them
const (
	msgUnsupportedType = "نوع الملف غير مدعوم. يرجى رفع ملف PDF أو DOCX أو TXT فقط."
	msgFileTooLarge    = "حجم الملف كبير جداً. الحد الأقصى هو 50 ميجابايت."
	msgFileEmpty       = "الملف فارغ. يرجى رفع ملف يحتوي على محتوى."
	msgUploadSuccess   = "تم رفع ومعالجة المستند بنجاح"
	msgProcessingError = "حدث خطأ أثناء معالجة المستند. يرجى التحقق من تنسيق الملف والمحاولة مرة أخرى."
)

// RootHandler godoc
// @Summary      Service banner
// @Description  Returns the service name and a running status.
// @Tags         Meta
// @Produce      json
// @Success      200  {object}  api.RootResponse
// @Router       / [get]
func RootHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.RootResponse{
		Message: "RAG Synapse API",
		Status:  "running",
	})
}

// ChatHandler godoc
// @Summary      Ask a question over the indexed documents
// @Description  Embeds the query, retrieves the most similar chunks and generates an answer. Sources are attached only when the answer is grounded in retrieved content.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest  true  "Question and optional top_k"
// @Success      200      {object}  api.ChatResponse
// @Failure      400      {object}  api.ErrorResponse  "Empty query or malformed body"
// @Failure      503      {object}  api.ErrorResponse  "Embedding or LLM service unavailable"
// @Router       /chat [post]
func ChatHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	var requestData api.ChatRequest
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			logRH.Error("Couldn't close the Chat handler reader :", "error", err)
		}
	}(r.Body)

	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		logRH.Warn("Bad Chat Request: ", "error:", err)
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(requestData.Query) == "" {
		writeErrorResponse(w, http.StatusBadRequest, "Query is required.")
		return
	}

	result, err := ragService.Chat(r.Context(), requestData.Query, requestData.TopK)
	if err != nil {
		logRH.Error("Chat pipeline failed", "error", err)
		code, detail := mapError(err)
		writeErrorResponse(w, code, detail)
		return
	}

	writeJsonResponse(w, http.StatusOK, api.ChatResponse{
		Answer:  result.Answer,
		Sources: toAPISources(result.Sources),
	})
}

// UploadHandler godoc
// @Summary      Upload a document for indexing
// @Description  Receives a PDF, DOCX or TXT file via multipart/form-data, extracts its text, chunks it, embeds each chunk and indexes the result. The call is synchronous; the document is searchable when it returns.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "The document to index"
// @Success      200   {object}  api.UploadResponse
// @Failure      400   {object}  api.ErrorResponse  "Unsupported type, empty file or file too large"
// @Failure      503   {object}  api.ErrorResponse  "Embedding service unavailable"
// @Router       /upload [post]
func UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes)

	const parseMemory = 32 << 20 //32mb, rest spills to disk
	if err := r.ParseMultipartForm(parseMemory); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, msgFileTooLarge)
		return
	}

	fileReader, fileMetadata, err := r.FormFile("file")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	// reject before anything touches the temp directory
	if _, ok := allowedExtension(fileMetadata.Filename); !ok {
		writeErrorResponse(w, http.StatusBadRequest, msgUnsupportedType)
		return
	}
	if fileMetadata.Size == 0 {
		writeErrorResponse(w, http.StatusBadRequest, msgFileEmpty)
		return
	}
	if fileMetadata.Size > config.MaxUploadBytes {
		writeErrorResponse(w, http.StatusBadRequest, msgFileTooLarge)
		return
	}

	targetDir, err := getTargetDirectory()
	if err != nil {
		logRH.Error("Couldn't get target directory :", "error", err)
		writeErrorResponse(w, http.StatusInternalServerError, genericErrorDetail)
		return
	}

	tempFilePath := filepath.Join(targetDir, fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(fileMetadata.Filename)))
	destinationFileWriter, err := os.Create(tempFilePath)
	if err != nil {
		logRH.Error("Storage error", "error", err)
		writeErrorResponse(w, http.StatusInternalServerError, genericErrorDetail)
		return
	}
	defer func() {
		destinationFileWriter.Close()
		if err := os.Remove(tempFilePath); err != nil {
			logRH.Warn("Couldn't remove temp file", "path", tempFilePath, "error", err)
		}
	}()

	if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
		logRH.Error("Write error", "error", err)
		writeErrorResponse(w, http.StatusInternalServerError, genericErrorDetail)
		return
	}
	// the extractors reopen the file themselves
	if err := destinationFileWriter.Sync(); err != nil {
		logRH.Error("Sync error", "error", err)
		writeErrorResponse(w, http.StatusInternalServerError, genericErrorDetail)
		return
	}

	result, err := ragService.IngestDocument(r.Context(), tempFilePath, fileMetadata.Filename)
	if err != nil {
		logRH.Error("Document ingestion failed", "file", fileMetadata.Filename, "error", err)
		code, detail := mapError(err)
		if code == http.StatusInternalServerError {
			detail = msgProcessingError
		}
		writeErrorResponse(w, code, detail)
		return
	}

	writeJsonResponse(w, http.StatusOK, api.UploadResponse{
		Message:         msgUploadSuccess,
		DocId:           result.DocId,
		FileName:        fileMetadata.Filename,
		ChunksCreated:   result.ChunksCreated,
		UploadTimestamp: result.UploadTimestamp,
	})
}

// DocumentsHandler godoc
// @Summary      List indexed documents
// @Description  Returns one entry per indexed document with its chunk count and upload timestamp.
// @Tags         Documents
// @Produce      json
// @Success      200  {object}  api.DocumentsResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /documents [get]
func DocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	docs, err := ragService.ListDocuments(r.Context())
	if err != nil {
		logRH.Error("Listing documents failed", "error", err)
		code, detail := mapError(err)
		writeErrorResponse(w, code, detail)
		return
	}

	now := time.Now().Format(time.RFC3339)
	entries := make([]api.DocumentEntry, 0, len(docs))
	for _, d := range docs {
		lastUpdated := d.UploadTimestamp
		if lastUpdated == "" {
			lastUpdated = now
		}
		entries = append(entries, api.DocumentEntry{
			DocId:           d.DocId,
			FileName:        d.FileName,
			ChunksCount:     d.ChunksCount,
			UploadTimestamp: d.UploadTimestamp,
			LastUpdated:     lastUpdated,
		})
	}

	writeJsonResponse(w, http.StatusOK, api.DocumentsResponse{Documents: entries})
}

// DeleteDocumentHandler godoc
// @Summary      Delete a document
// @Description  Removes every indexed chunk belonging to the given document id.
// @Tags         Documents
// @Produce      json
// @Param        doc_id  path      string  true  "Document ID"
// @Success      200     {object}  api.DeleteResponse
// @Failure      404     {object}  api.ErrorResponse  "Unknown document id"
// @Router       /documents/{doc_id} [delete]
func DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	docId := utils.GetChiURLParam(r, "doc_id")
	if docId == "" {
		writeErrorResponse(w, http.StatusBadRequest, "doc_id is required")
		return
	}

	deleted, err := ragService.DeleteDocument(r.Context(), docId)
	if err != nil {
		logRH.Error("Deleting document failed", "docId", docId, "error", err)
		code, detail := mapError(err)
		writeErrorResponse(w, code, detail)
		return
	}
	if deleted == 0 {
		writeErrorResponse(w, http.StatusNotFound, "Document not found")
		return
	}

	writeJsonResponse(w, http.StatusOK, api.DeleteResponse{
		Message:      fmt.Sprintf("Deleted %d chunks for document %s", deleted, docId),
		DeletedCount: deleted,
	})
}

// HealthHandler godoc
// @Summary      Aggregated dependency health
// @Description  Probes the embedding client, the LLM client and the vector index. Overall status is ok only when every probe succeeds.
// @Tags         Meta
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       /health [get]
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	report := ragService.Health(r.Context())

	services := make(map[string]api.ServiceStatus, len(report.Services))
	for name, s := range report.Services {
		services[name] = api.ServiceStatus{Status: s.Status, Error: s.Error}
	}

	writeJsonResponse(w, http.StatusOK, api.HealthResponse{
		Status:   report.Status,
		Services: services,
	})
}

// StatusHandler godoc
// @Summary      Client initialization state
// @Description  Reports whether the external clients have been initialized and whether their API keys are configured, without calling out to them.
// @Tags         Meta
// @Produce      json
// @Success      200  {object}  api.StatusResponse
// @Router       /status [get]
func StatusHandler(w http.ResponseWriter, r *http.Request) {
	var resp api.StatusResponse

	keyPresent, initialized, errText := googleEmbedding.InitState()
	resp.Embedding = api.ClientStatus{APIKeyPresent: keyPresent, Initialized: initialized, Error: errText}

	keyPresent, initialized, errText = deepseek.InitState()
	resp.LLM = api.ClientStatus{APIKeyPresent: keyPresent, Initialized: initialized, Error: errText}

	host, port := config.GetQdrantAddr()
	resp.VectorIndex.Addr = fmt.Sprintf("%s:%d", host, port)
	resp.VectorIndex.Collection = config.CollectionName
	resp.RedisAddr = config.GetRedisAddr()

	writeJsonResponse(w, http.StatusOK, resp)
}
