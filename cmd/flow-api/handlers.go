package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"FlowTagger/internal/model"
	"FlowTagger/internal/query"
	"FlowTagger/internal/writer"

	"github.com/gorilla/mux"
	"google.golang.org/protobuf/encoding/protojson"
)

// APIHandler holds the dependencies for API handlers.
type APIHandler struct {
	querier query.Querier
}

// Router registers the API routes.
func (h *APIHandler) Router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/reports", h.listReportsHandler).Methods(http.MethodGet)
	api.HandleFunc("/reports/{id}", h.reportHandler).Methods(http.MethodGet)
	api.HandleFunc("/reports/{id}/tags", h.tagsHandler).Methods(http.MethodGet)
	api.HandleFunc("/reports/{id}/ports", h.portsHandler).Methods(http.MethodGet)
	return r
}

// listReportsHandler returns the ids of all stored reports, oldest first.
func (h *APIHandler) listReportsHandler(w http.ResponseWriter, r *http.Request) {
	ids, err := h.querier.List()
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to list reports: %v", err), http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, map[string][]string{"reports": ids})
}

// reportHandler returns a full report. The id "latest" selects the newest one.
func (h *APIHandler) reportHandler(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.lookup(w, r)
	if !ok {
		return
	}

	s, err := writer.ReportStruct(rep)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	jsonBytes, err := protojson.Marshal(s)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to marshal response: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(jsonBytes)
}

func (h *APIHandler) tagsHandler(w http.ResponseWriter, r *http.Request) {
	if rep, ok := h.lookup(w, r); ok {
		writeJSON(w, rep.Tags)
	}
}

func (h *APIHandler) portsHandler(w http.ResponseWriter, r *http.Request) {
	if rep, ok := h.lookup(w, r); ok {
		writeJSON(w, rep.PortProtocols)
	}
}

// lookup resolves the {id} route variable and writes the error response on failure.
func (h *APIHandler) lookup(w http.ResponseWriter, r *http.Request) (*model.Report, bool) {
	id := mux.Vars(r)["id"]

	var (
		rep *model.Report
		err error
	)
	if id == "latest" {
		rep, err = h.querier.Latest()
	} else {
		rep, err = h.querier.Get(id)
	}

	switch {
	case errors.Is(err, query.ErrNotFound):
		http.Error(w, fmt.Sprintf("report %q not found", id), http.StatusNotFound)
		return nil, false
	case err != nil:
		http.Error(w, fmt.Sprintf("failed to read report: %v", err), http.StatusInternalServerError)
		return nil, false
	}
	return rep, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}
