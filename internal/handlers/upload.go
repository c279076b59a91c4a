package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/storage"
)

// saveImage reads the multipart "file" field and stores it through images.
// It answers the request itself on failure.
func saveImage(
	c *gin.Context,
	images *storage.Images,
	salonID uint,
	kind string,
	maxSide int,
) (string, bool) {

	fh, err := c.FormFile("file")
	if err != nil {
		httperr.Respond(c, httperr.ErrValidation("invalid_file"))
		return "", false
	}
	if fh.Size > storage.MaxUploadBytes {
		httperr.Respond(c, httperr.ErrValidation("file_too_large"))
		return "", false
	}

	f, err := fh.Open()
	if err != nil {
		httperr.Respond(c, httperr.ErrValidation("invalid_file"))
		return "", false
	}
	defer f.Close()

	url, err := images.Save(c.Request.Context(), salonID, kind, f, maxSide)
	switch {
	case err == nil:
		return url, true
	case errors.Is(err, storage.ErrTooLarge):
		httperr.Respond(c, httperr.ErrValidation("file_too_large"))
	case errors.Is(err, storage.ErrInvalidImage):
		httperr.Respond(c, httperr.ErrValidation("invalid_file"))
	case errors.Is(err, storage.ErrDisabled):
		httperr.Respond(c, httperr.ErrBusiness("storage_unavailable"))
	default:
		httperr.Respond(c, err)
	}
	return "", false
}
