package httpapi

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"roadward.org/internal/audit"
	"roadward.org/internal/ors"
	"roadward.org/internal/upload"
)

const maxUploadFiles = 10

func (a *API) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if _, ok := a.ensureOperation(w, r, ors.OpCreate); !ok {
		return
	}
	if a.uploads == nil || !a.uploads.Enabled() {
		writeError(w, r, http.StatusServiceUnavailable, "uploads are disabled")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	stored, err := a.saveUpload(r, header.Filename, file)
	if err != nil {
		a.uploadError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"file": stored,
	})
}

// handleUploadScoped routes /v1/uploads/config and /v1/uploads/multiple.
func (a *API) handleUploadScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/uploads/")
	switch rest {
	case "config":
		a.uploadConfig(w, r)
	case "multiple":
		a.uploadMultiple(w, r)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

// uploadConfig is public so clients can hide the attachment UI when the
// feature is off.
func (a *API) uploadConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	enabled := a.uploads != nil && a.uploads.Enabled()
	writeSuccess(w, http.StatusOK, map[string]any{
		"enabled": enabled,
	})
}

func (a *API) uploadMultiple(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if _, ok := a.ensureOperation(w, r, ors.OpCreate); !ok {
		return
	}
	if a.uploads == nil || !a.uploads.Enabled() {
		writeError(w, r, http.StatusServiceUnavailable, "uploads are disabled")
		return
	}
	if err := r.ParseMultipartForm(a.maxBodyBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, "multipart form is required")
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, r, http.StatusBadRequest, "files field is required")
		return
	}
	if len(headers) > maxUploadFiles {
		writeError(w, r, http.StatusBadRequest, "too many files")
		return
	}

	stored := make([]upload.File, 0, len(headers))
	for _, h := range headers {
		f, err := a.saveUploadHeader(r, h)
		if err != nil {
			a.uploadError(w, r, err)
			return
		}
		stored = append(stored, f)
	}
	writeSuccessList(w, http.StatusOK, len(stored), map[string]any{
		"files": stored,
	})
}

func (a *API) saveUploadHeader(r *http.Request, h *multipart.FileHeader) (upload.File, error) {
	f, err := h.Open()
	if err != nil {
		return upload.File{}, err
	}
	defer f.Close()
	return a.saveUpload(r, h.Filename, f)
}

func (a *API) saveUpload(r *http.Request, filename string, src multipart.File) (upload.File, error) {
	if a.uploads == nil {
		return upload.File{}, upload.ErrDisabled
	}
	stored, err := a.uploads.Save(r.Context(), filename, src)
	if err != nil {
		return upload.File{}, err
	}
	_ = audit.LogEvent(r.Context(), "upload.save", map[string]any{
		"filename": stored.Filename,
	})
	return stored, nil
}

func (a *API) uploadError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, upload.ErrDisabled) {
		writeError(w, r, http.StatusServiceUnavailable, "uploads are disabled")
		return
	}
	a.handleDomainError(w, r, err)
}
