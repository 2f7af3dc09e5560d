// Package httpserver exposes the catalog over HTTP. Handlers parse and
// validate the request, delegate to the catalog service, and translate the
// error taxonomy into status codes. Every response, success or failure,
// uses the same JSON envelope.
package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/goliatone/go-bus-catalog/catalog"
)

// envelope is the uniform response body: {success, message, data}.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type handler struct {
	svc *catalog.Service
	log *slog.Logger
}

// NewHandler builds the routed HTTP handler with request-id and logging
// middleware applied.
func NewHandler(svc *catalog.Service, log *slog.Logger) http.Handler {
	h := &handler{svc: svc, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/bus", h.list)
	mux.HandleFunc("GET /v1/bus/details", h.details)
	mux.HandleFunc("POST /v1/bus", h.create)
	mux.HandleFunc("PUT /v1/bus/{id}", h.update)
	mux.HandleFunc("DELETE /v1/bus/{id}", h.delete)

	return withRequestID(withLogging(mux, log))
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	offset := queryInt(r, "offset", 0)

	routes, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "routes fetched", Data: routes})
}

func (h *handler) details(w http.ResponseWriter, r *http.Request) {
	var sel catalog.Selector
	if raw := r.URL.Query().Get("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.writeJSON(w, http.StatusBadRequest, envelope{Message: "id must be an integer"})
			return
		}
		sel.ID = &id
	} else if routeNo := r.URL.Query().Get("route_number"); routeNo != "" {
		sel.RouteNo = &routeNo
	}

	route, err := h.svc.Get(r.Context(), sel)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "route fetched", Data: route})
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	route, err := h.svc.Create(r.Context(), fields)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, envelope{Success: true, Message: "route created", Data: route})
}

func (h *handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	fields, err := decodeFields(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	route, err := h.svc.Update(r.Context(), id, fields)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "route updated", Data: route})
}

func (h *handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "route deleted"})
}

func (h *handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, envelope{Message: "id must be an integer"})
		return 0, false
	}
	return id, true
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrInvalidRequest):
		h.writeJSON(w, http.StatusBadRequest, envelope{Message: err.Error()})
	case errors.Is(err, catalog.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, envelope{Message: "route not found"})
	default:
		h.log.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", requestIDFromContext(r.Context()),
			"error", err,
		)
		h.writeJSON(w, http.StatusInternalServerError, envelope{Message: "internal error"})
	}
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("response encode failed", "error", err)
	}
}

func decodeFields(r *http.Request) (catalog.Fields, error) {
	defer r.Body.Close()

	var fields catalog.Fields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.Join(catalog.ErrInvalidRequest, errors.New("request body is required"))
		}
		return nil, errors.Join(catalog.ErrInvalidRequest, err)
	}
	if len(fields) == 0 {
		return nil, errors.Join(catalog.ErrInvalidRequest, errors.New("request body is required"))
	}
	return fields, nil
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
