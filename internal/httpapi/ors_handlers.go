package httpapi

import (
	"net/http"
	"strings"

	"roadward.org/internal/audit"
	"roadward.org/internal/ors"
)

func (a *API) handleRecordsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listRecords(w, r)
	case http.MethodPost:
		a.createRecord(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleRecordScoped routes /v1/ors/{id} and /v1/ors/stats.
func (a *API) handleRecordScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/ors/")
	if rest == "" || strings.Contains(rest, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if rest == "stats" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		a.recordStats(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		a.getRecord(w, r, rest)
	case http.MethodPut:
		a.updateRecord(w, r, rest)
	case http.MethodDelete:
		a.deleteRecord(w, r, rest)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) listRecords(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.ensureOperation(w, r, ors.OpRead); !ok {
		return
	}
	q := r.URL.Query()
	f := ors.Filter{
		Vehicle:      q.Get("vehicle"),
		InspectorID:  q.Get("inspector"),
		TrafficScore: q.Get("trafficScore"),
	}
	records, err := a.ors.List(r.Context(), f)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeSuccessList(w, http.StatusOK, len(records), map[string]any{
		"records": records,
	})
}

func (a *API) createRecord(w http.ResponseWriter, r *http.Request) {
	user, ok := a.ensureOperation(w, r, ors.OpCreate)
	if !ok {
		return
	}
	var in ors.CreateInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	record, err := a.ors.Create(r.Context(), in, user)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "ors.create", map[string]any{
		"record_id": record.ID,
		"vehicle":   record.Vehicle,
	})
	writeSuccess(w, http.StatusCreated, map[string]any{
		"record": record,
	})
}

func (a *API) getRecord(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := a.ensureOperation(w, r, ors.OpRead); !ok {
		return
	}
	record, err := a.ors.Get(r.Context(), id)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"record": record,
	})
}

func (a *API) updateRecord(w http.ResponseWriter, r *http.Request, id string) {
	user, ok := a.ensureOperation(w, r, ors.OpUpdate)
	if !ok {
		return
	}
	var in ors.UpdateInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	record, err := a.ors.Update(r.Context(), id, in, user)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "ors.update", map[string]any{
		"record_id": record.ID,
	})
	writeSuccess(w, http.StatusOK, map[string]any{
		"record": record,
	})
}

func (a *API) deleteRecord(w http.ResponseWriter, r *http.Request, id string) {
	user, ok := a.ensureOperation(w, r, ors.OpDelete)
	if !ok {
		return
	}
	if err := a.ors.Delete(r.Context(), id, user); err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "ors.delete", map[string]any{
		"record_id": id,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) recordStats(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.ensureOperation(w, r, ors.OpReadStats); !ok {
		return
	}
	stats, err := a.ors.Stats(r.Context())
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"stats": stats,
	})
}
