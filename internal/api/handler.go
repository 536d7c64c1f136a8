// Package api exposes the test repository over HTTP and provides the
// matching client used by the CLI in remote mode.
package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexanderramin/casetree/internal/contract"
	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/service"
	"github.com/goccy/go-json"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	projects service.ProjectService
	trees    service.TreeService
	reorders service.ReorderService
	logger   *slog.Logger
	mux      *http.ServeMux
}

func NewHandler(projects service.ProjectService, trees service.TreeService, reorders service.ReorderService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &Handler{projects: projects, trees: trees, reorders: reorders, logger: logger, mux: http.NewServeMux()}

	h.mux.HandleFunc("GET /api/projects", h.listProjects)
	h.mux.HandleFunc("POST /api/projects", h.createProject)
	h.mux.HandleFunc("DELETE /api/projects/{projectID}", h.deleteProject)
	h.mux.HandleFunc("GET /api/projects/{projectID}/suites", h.listSuites)
	h.mux.HandleFunc("GET /api/projects/{projectID}/sections", h.listSections)
	h.mux.HandleFunc("GET /api/projects/{projectID}/test-cases", h.listTestCases)
	h.mux.HandleFunc("POST /api/projects/{projectID}/suites", h.createSuite)
	h.mux.HandleFunc("POST /api/projects/{projectID}/sections", h.createSection)
	h.mux.HandleFunc("POST /api/projects/{projectID}/test-cases", h.createTestCase)
	h.mux.HandleFunc("POST /api/projects/{projectID}/reorder", h.reorder)
	h.mux.HandleFunc("PATCH /api/nodes/{kind}/{id}", h.rename)
	h.mux.HandleFunc("DELETE /api/nodes/{kind}/{id}", h.delete)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	h.mux.ServeHTTP(rec, r)
	h.logger.InfoContext(r.Context(), "http_request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", rec.status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// project resolves the path's project or writes a 404.
func (h *Handler) project(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("projectID")
	if _, err := h.projects.GetByID(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return "", false
	}
	return id, true
}

func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]contract.Project, len(projects))
	for i, p := range projects {
		out[i] = contract.FromProject(p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	var in contract.Project
	if !h.decode(w, r, &in) {
		return
	}
	p := in.Domain()
	p.ID = ""
	if err := h.projects.Create(r.Context(), p); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, contract.FromProject(p))
}

func (h *Handler) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.projects.Delete(r.Context(), r.PathValue("projectID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listSuites(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.project(w, r)
	if !ok {
		return
	}
	list, err := h.trees.ListSuites(r.Context(), projectID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]contract.Suite, len(list))
	for i, s := range list {
		out[i] = contract.FromSuite(s)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) listSections(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.project(w, r)
	if !ok {
		return
	}
	list, err := h.trees.ListSections(r.Context(), projectID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]contract.Section, len(list))
	for i, s := range list {
		out[i] = contract.FromSection(s)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) listTestCases(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.project(w, r)
	if !ok {
		return
	}
	list, err := h.trees.ListTestCases(r.Context(), projectID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]contract.TestCase, len(list))
	for i, tc := range list {
		out[i] = contract.FromTestCase(tc)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createSuite(w http.ResponseWriter, r *http.Request) {
	var in contract.Suite
	if !h.decode(w, r, &in) {
		return
	}
	s := in.Domain()
	s.ID, s.ProjectID = "", r.PathValue("projectID")
	if err := h.trees.CreateSuite(r.Context(), &s); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, contract.FromSuite(&s))
}

func (h *Handler) createSection(w http.ResponseWriter, r *http.Request) {
	var in contract.Section
	if !h.decode(w, r, &in) {
		return
	}
	s, err := in.Domain()
	if err != nil {
		h.badRequest(w, err)
		return
	}
	s.ID, s.ProjectID = "", r.PathValue("projectID")
	if err := h.trees.CreateSection(r.Context(), &s); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, contract.FromSection(&s))
}

func (h *Handler) createTestCase(w http.ResponseWriter, r *http.Request) {
	var in contract.TestCase
	if !h.decode(w, r, &in) {
		return
	}
	tc := in.Domain()
	tc.ID, tc.ProjectID = "", r.PathValue("projectID")
	if err := h.trees.CreateTestCase(r.Context(), &tc); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, contract.FromTestCase(&tc))
}

func (h *Handler) reorder(w http.ResponseWriter, r *http.Request) {
	req, err := contract.DecodeReorderRequest(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.badRequest(w, err)
		return
	}
	// The path is authoritative; a body naming another project is refused.
	projectID := r.PathValue("projectID")
	if req.ProjectID == "" {
		req.ProjectID = projectID
	}
	if req.ProjectID != projectID {
		writeJSON(w, http.StatusBadRequest, contract.ErrorResponse{Code: CodeInvalidReorder, Error: "projectId does not match path"})
		return
	}
	if err := h.reorders.Apply(r.Context(), req); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) rename(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	var in contract.RenameRequest
	if !h.decode(w, r, &in) {
		return
	}
	if err := h.trees.Rename(r.Context(), kind, r.PathValue("id"), in.Name); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	if err := h.trees.Delete(r.Context(), kind, r.PathValue("id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) kind(w http.ResponseWriter, r *http.Request) (domain.NodeKind, bool) {
	kind, err := domain.ParseNodeKind(r.PathValue("kind"))
	if err != nil {
		h.badRequest(w, err)
		return "", false
	}
	return kind, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty request body")
		}
		h.badRequest(w, err)
		return false
	}
	return true
}

func (h *Handler) badRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, contract.ErrorResponse{Code: CodeBadRequest, Error: err.Error()})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "http_internal_error", "path", r.URL.Path, "error", msg)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, contract.ErrorResponse{Code: code, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Serve runs the API on addr until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	if logger != nil {
		logger.Info("api_listening", "addr", addr)
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
