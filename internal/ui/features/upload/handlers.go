package upload

import (
	"errors"
	"io"
	"net/http"

	"github.com/leapstack-labs/sqlview/internal/ui/features/common"
	"github.com/leapstack-labs/sqlview/internal/ui/notifier"
)

// FieldName is the multipart field carrying the files.
const FieldName = "files"

// Handlers provides HTTP handlers for the upload feature.
type Handlers struct {
	deps common.Deps
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps common.Deps) *Handlers {
	return &Handlers{deps: deps}
}

// Upload streams every file of a multipart form into the catalog and
// redirects back to the page. Rejected files become workspace warnings.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	ws, ok := common.SessionWorkspace(w, r)
	if !ok {
		return
	}

	if h.deps.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.deps.MaxUploadBytes)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		http.Error(w, "expected a multipart upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	added := 0
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			h.fail(w, err)
			return
		}

		if part.FormName() != FieldName || part.FileName() == "" {
			_ = part.Close()
			continue
		}

		out, err := h.deps.Service.Upload(r.Context(), ws, part.FileName(), part)
		_ = part.Close()
		if err != nil {
			h.fail(w, err)
			return
		}
		if out.Accepted() && !out.AlreadyLoaded {
			added++
		}
	}

	if added > 0 {
		h.deps.Logger.Info("databases uploaded", "count", added)
		h.deps.Notifier.Broadcast(notifier.Uploaded)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) fail(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
		return
	}
	h.deps.Logger.Error("upload failed", "error", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
