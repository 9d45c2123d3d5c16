package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/netip"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/download"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/errors"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/log"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/service"
)

// Handler manages all API endpoints and dependencies.
type Handler struct {
	botList *service.BotListService
	checker *service.CheckService
	version VersionInfo
}

// NewHandler creates a new API handler. checker may be nil, which disables the check route.
func NewHandler(botList *service.BotListService, checker *service.CheckService, version VersionInfo) *Handler {
	return &Handler{
		botList: botList,
		checker: checker,
		version: version,
	}
}

// writeJSON writes a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(DataResponse{Data: data}); err != nil {
		log.Debugf("Failed to encode response: %v", err)
	}
}

// writeJSONData writes a successful JSON response with data.
func writeJSONData(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, data)
}

// queryBool reads a boolean query flag. A bare "?force" counts as true.
func queryBool(r *http.Request, name string) (bool, error) {
	q := r.URL.Query()
	if !q.Has(name) {
		return false, nil
	}
	v := q.Get(name)
	if v == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid value for %s: %q", name, v)
	}
	return b, nil
}

// Health answers liveness probes.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSONData(w, HealthResponse{Status: "ok"})
}

// GetList serves the artifact, regenerating it first when it is stale.
func (h *Handler) GetList(w http.ResponseWriter, r *http.Request) {
	force, err := queryBool(r, "force")
	if err != nil {
		WriteInvalidRequest(w, err.Error())
		return
	}
	echo, err := queryBool(r, "echo")
	if err != nil {
		WriteInvalidRequest(w, err.Error())
		return
	}

	sink := &httpSink{w: w, r: r}
	if err := h.botList.Read(r.Context(), force, echo, sink); err != nil {
		if sink.written {
			log.Warnf("Failed to send artifact: %v", err)
			return
		}
		WriteDomainError(w, err)
	}
}

// RefreshList regenerates the artifact and reports what happened.
func (h *Handler) RefreshList(w http.ResponseWriter, r *http.Request) {
	force, err := queryBool(r, "force")
	if err != nil {
		WriteInvalidRequest(w, err.Error())
		return
	}

	outcome, err := h.botList.Refresh(r.Context(), force)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	writeJSONData(w, outcome)
}

// GetStatus reports the artifact and lookup index state.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.botList.Status()
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	resp := StatusResponse{
		Version:   h.version,
		Artifact:  st,
		Endpoints: h.botList.Registry().Len(),
	}
	if h.checker != nil {
		idx := h.checker.Index()
		resp.Index = &IndexInfo{
			Size:     idx.Size(),
			Skipped:  idx.Skipped(),
			LoadedAt: idx.LoadedAt(),
		}
	}
	writeJSONData(w, resp)
}

// GetEndpoints lists the configured feeds.
func (h *Handler) GetEndpoints(w http.ResponseWriter, r *http.Request) {
	writeJSONData(w, EndpointsResponse{Endpoints: h.botList.Registry().All()})
}

// CheckAddr answers whether {ip} belongs to a listed crawler.
func (h *Handler) CheckAddr(w http.ResponseWriter, r *http.Request) {
	if h.checker == nil {
		WriteError(w, http.StatusNotImplemented, NewAPIError(ErrCodeNotConfigured, "Address lookup is not enabled"))
		return
	}

	raw := chi.URLParam(r, "ip")
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		WriteInvalidRequest(w, fmt.Sprintf("invalid IP address: %q", raw))
		return
	}
	verifyDNS, err := queryBool(r, "verify")
	if err != nil {
		WriteInvalidRequest(w, err.Error())
		return
	}

	res, err := h.checker.Check(r.Context(), addr, verifyDNS)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	writeJSONData(w, res)
}

// httpSink is the service.Sink of an HTTP client: never headless.
type httpSink struct {
	w       http.ResponseWriter
	r       *http.Request
	written bool
}

func (s *httpSink) Headless() bool { return false }

func (s *httpSink) NoContent() error {
	return s.text([]byte(service.NoContentMessage))
}

func (s *httpSink) Path(path string) error {
	return s.text([]byte(path))
}

func (s *httpSink) Inline(content []byte) error {
	return s.text(content)
}

// Download streams the file. An INVALID_PATH error means nothing was sent yet.
func (s *httpSink) Download(resp *download.Response) error {
	err := resp.Write(s.w, s.r)
	s.written = !errors.IsCode(err, errors.ErrCodeInvalidPath)
	return err
}

func (s *httpSink) text(b []byte) error {
	s.written = true
	s.w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	s.w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	s.w.WriteHeader(http.StatusOK)
	_, err := s.w.Write(b)
	return err
}
