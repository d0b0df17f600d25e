package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/studyvault/studyvault/internal/core/ports"
	"github.com/studyvault/studyvault/internal/observability/metrics"
)

const maxUploadBytes = 64 << 20

type Router struct {
	ingest  ports.DocumentIngestor
	query   ports.QuestionAnswerer
	reader  ports.DocumentReader
	remover ports.DocumentRemover

	jwtSecret string
	service   string
	metrics   *metrics.HTTPServerMetrics
}

func NewRouter(
	ingest ports.DocumentIngestor,
	query ports.QuestionAnswerer,
	reader ports.DocumentReader,
	remover ports.DocumentRemover,
	jwtSecret string,
	serverMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		ingest:    ingest,
		query:     query,
		reader:    reader,
		remover:   remover,
		jwtSecret: jwtSecret,
		service:   "studyvault-api",
		metrics:   serverMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(accessLogMiddleware(rt.metrics, rt.service))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
	}))

	r.Get("/healthz", rt.healthz)
	if rt.metrics != nil {
		r.Handle("/metrics", rt.metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(authMiddleware(rt.jwtSecret))
		r.Post("/documents", rt.uploadDocument)
		r.Post("/documents/attach", rt.attachDocument)
		r.Get("/documents", rt.listDocuments)
		r.Get("/documents/{id}", rt.getDocument)
		r.Delete("/documents/{id}", rt.deleteDocument)
		r.Post("/ask", rt.ask)
	})

	return r
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type ingestResponse struct {
	Success    bool   `json:"success"`
	DocumentID string `json:"document_id,omitempty"`
	Message    string `json:"message"`
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid multipart form"))
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("multipart field 'file' is required"))
		return
	}
	defer file.Close()

	doc, err := rt.ingest.Upload(r.Context(), ownerFromContext(r.Context()), ports.UploadRequest{
		Filename:  fileHeader.Filename,
		MediaType: fileHeader.Header.Get("Content-Type"),
		Title:     r.FormValue("title"),
		Body:      file,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, ingestResponse{
		Success:    true,
		DocumentID: doc.ID,
		Message:    "document accepted for processing",
	})
}

func (rt *Router) attachDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StoragePath string `json:"storage_path"`
		FileName    string `json:"file_name"`
		MediaType   string `json:"media_type"`
		FileSize    int64  `json:"file_size"`
		Title       string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid json"))
		return
	}

	doc, err := rt.ingest.Attach(r.Context(), ownerFromContext(r.Context()), ports.AttachRequest{
		StoragePath: req.StoragePath,
		Filename:    req.FileName,
		MediaType:   req.MediaType,
		Title:       req.Title,
		SizeBytes:   req.FileSize,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, ingestResponse{
		Success:    true,
		DocumentID: doc.ID,
		Message:    "document accepted for processing",
	})
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := rt.reader.ListByOwner(r.Context(), ownerFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := rt.reader.GetByID(r.Context(), ownerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := rt.remover.Remove(r.Context(), ownerFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (rt *Router) ask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
		Limit    int    `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid json"))
		return
	}

	answer, err := rt.query.Ask(r.Context(), ownerFromContext(r.Context()), req.Question, req.Limit)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.ObserveRetrieval(rt.service, len(answer.Sources))
	}
	writeJSON(w, http.StatusOK, answer)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), errorResponse(err.Error()))
}

func errorResponse(message string) map[string]any {
	return map[string]any{"success": false, "error": message}
}
