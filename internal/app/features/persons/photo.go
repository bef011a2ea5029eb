// internal/app/features/persons/photo.go
package persons

import (
	"fmt"
	"io"
	"net/http"

	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/dalemusser/iglesiahub/internal/app/system/authz"
	"github.com/dalemusser/iglesiahub/internal/app/system/photostore"
	"github.com/dalemusser/iglesiahub/internal/app/system/respond"
	"github.com/dalemusser/iglesiahub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

var errPhotosDisabled = fmt.Errorf("%w: photo storage is not configured", apperr.ErrInvalidState)

// HandlePhoto handles POST /api/persons/{id}/photo (multipart field "photo").
func (h *Handler) HandlePhoto(w http.ResponseWriter, r *http.Request) {
	_, churchID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.ErrUnauthorized)
		return
	}
	id, err := authz.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if h.Photos == nil {
		respond.Error(w, r, h.Log, errPhotosDisabled)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, photostore.MaxBytes+(64<<10))
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		respond.Error(w, r, h.Log, apperr.Validation("photo must be a multipart upload under 5MB"))
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		respond.Error(w, r, h.Log, apperr.Validation("missing photo field"))
		return
	}
	defer file.Close()
	if header.Size > photostore.MaxBytes {
		respond.Error(w, r, h.Log, apperr.Validation("photo exceeds 5MB"))
		return
	}

	// Trust the bytes, not the client's declared type.
	sniff := make([]byte, 512)
	n, _ := io.ReadFull(file, sniff)
	contentType := http.DetectContentType(sniff[:n])
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	key, err := photostore.Key(churchID, id, contentType)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "person photo")
	defer cancel()

	if _, err := h.Persons.Get(ctx, churchID, id); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	url, err := h.Photos.Put(ctx, key, contentType, file)
	if err != nil {
		h.Log.Error("photo upload failed", zap.Int64("person_id", id), zap.Error(err))
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := h.Persons.SetPhoto(ctx, churchID, id, url); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Audit.PersonUpdated(ctx, r, authz.Actor(r), id)
	respond.JSON(w, http.StatusOK, photoResponse{PhotoURL: url})
}
