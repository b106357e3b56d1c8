package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/udaykumar0515/speakup-gateway/internal/codec"
	"github.com/udaykumar0515/speakup-gateway/internal/domain"
	"github.com/udaykumar0515/speakup-gateway/internal/extract"
	"github.com/udaykumar0515/speakup-gateway/internal/server"
)

// Request body caps. Resume uploads carry whole documents; JSON bodies
// never legitimately approach a megabyte.
const (
	maxUploadBytes = 10 << 20
	maxJSONBytes   = 1 << 20
)

// Handler exposes the gateway over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates the HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// writeFault puts the fault on the request's completion log line and writes
// the client-facing error body.
func writeFault(w http.ResponseWriter, r *http.Request, err error) {
	server.AddError(r.Context(), err)
	codec.WriteError(w, err)
}

// Routes returns the gateway's route tree. The server mounts it under
// /v1; every route expects a bearer identity token.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/resume/extract", h.handleExtract)
	r.Post("/resume/analyze", h.handleAnalyze)
	r.Get("/resume/history", h.handleResumeHistory)
	r.Post("/feedback", h.handleFeedback)
	r.Get("/aptitude/questions", h.handleAptitudeQuestions)
	r.Post("/aptitude/submit", h.handleAptitudeSubmit)
	r.Get("/aptitude/history", h.handleAptitudeHistory)
	return r
}

type historyResponse struct {
	Results any `json:"results"`
	Count   int `json:"count"`
}

type feedbackRequest struct {
	Prompt  string `json:"prompt"`
	Context string `json:"context"`
}

type feedbackResponse struct {
	Feedback string `json:"feedback"`
}

type healthResponse struct {
	Status    string               `json:"status"`
	Providers []domain.ProviderTag `json:"providers"`
}

// HandleHealthz reports liveness and the registered provider tags. The
// server mounts it outside the authenticated API tree.
func (h *Handler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	codec.WriteJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Providers: h.service.ProviderTags(),
	})
}

func (h *Handler) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	doc, err := readDocument(r)
	if err != nil {
		writeFault(w, r, err)
		return
	}

	out, err := h.service.ExtractResume(r.Context(), bearerToken(r), doc)
	if err != nil {
		writeFault(w, r, err)
		return
	}
	codec.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	doc, err := readDocument(r)
	if err != nil {
		writeFault(w, r, err)
		return
	}

	out, err := h.service.AnalyzeResume(r.Context(), bearerToken(r), doc)
	if err != nil {
		writeFault(w, r, err)
		return
	}
	codec.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleResumeHistory(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.ResumeHistory(r.Context(), bearerToken(r), queryInt(r, "limit", 0))
	if err != nil {
		writeFault(w, r, err)
		return
	}
	codec.WriteJSON(w, http.StatusOK, historyResponse{Results: results, Count: len(results)})
}

func (h *Handler) handleFeedback(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFault(w, r, domain.ErrInvalidInput("request body is not valid JSON"))
		return
	}

	text, err := h.service.Feedback(r.Context(), bearerToken(r), req.Prompt, req.Context)
	if err != nil {
		writeFault(w, r, err)
		return
	}
	codec.WriteJSON(w, http.StatusOK, feedbackResponse{Feedback: text})
}

func (h *Handler) handleAptitudeQuestions(w http.ResponseWriter, r *http.Request) {
	withAI, _ := strconv.ParseBool(r.URL.Query().Get("ai"))

	out, err := h.service.AptitudeQuestions(r.Context(), bearerToken(r),
		r.URL.Query().Get("topic"), queryInt(r, "count", 0), withAI)
	if err != nil {
		writeFault(w, r, err)
		return
	}
	codec.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleAptitudeSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)

	var sub Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeFault(w, r, domain.ErrInvalidInput("request body is not valid JSON"))
		return
	}

	result, err := h.service.SubmitAptitude(r.Context(), bearerToken(r), &sub)
	if err != nil {
		writeFault(w, r, err)
		return
	}
	codec.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleAptitudeHistory(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.AptitudeHistory(r.Context(), bearerToken(r), queryInt(r, "limit", 0))
	if err != nil {
		writeFault(w, r, err)
		return
	}
	codec.WriteJSON(w, http.StatusOK, historyResponse{Results: results, Count: len(results)})
}

// bearerToken extracts the identity token from the Authorization header.
// The Bearer prefix is optional; a bare token is accepted as sent.
func bearerToken(r *http.Request) string {
	token := r.Header.Get("Authorization")
	if len(token) >= 7 && strings.EqualFold(token[:7], "Bearer ") {
		token = token[7:]
	}
	return strings.TrimSpace(token)
}

// readDocument pulls the uploaded file out of a multipart form. The MIME
// type comes from the optional mime_type field, then the part header,
// then the filename extension.
func readDocument(r *http.Request) (*domain.DocumentPayload, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, domain.ErrInvalidInput("request is not valid multipart form data")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, domain.ErrInvalidInput("missing file upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, domain.ErrInvalidInput("reading file upload failed")
	}

	mimeType := r.FormValue("mime_type")
	if mimeType == "" {
		mimeType = header.Header.Get("Content-Type")
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = typeByExtension(header.Filename)
	}

	return &domain.DocumentPayload{Content: data, MIMEType: mimeType}, nil
}

func typeByExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extract.MIMEPDF
	case ".docx":
		return extract.MIMEDocx
	case ".txt":
		return extract.MIMEPlain
	default:
		return ""
	}
}

// queryInt parses a non-negative integer query parameter.
func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
