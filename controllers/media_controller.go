package controllers

import (
	"net/http"

	apperrors "kindling_server/pkg/errors"
	"kindling_server/services"
)

// MediaController exposes the media collaborator: presigned upload/read
// URLs for message attachments.
type MediaController struct {
	Media *services.MediaService
}

func NewMediaController(media *services.MediaService) *MediaController {
	return &MediaController{Media: media}
}

// HandleUploadURL - presigned PUT URL for a new attachment
func (c *MediaController) HandleUploadURL(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(w, r); !ok {
		return
	}

	var request struct {
		FileName string `json:"fileName"`
		FileType string `json:"fileType"`
	}
	if !decodeBody(w, r, &request) {
		return
	}
	if request.FileName == "" || request.FileType == "" {
		writeError(w, apperrors.InvalidArg("fileName and fileType are required"))
		return
	}

	url, key, err := c.Media.PresignUpload(r.Context(), request.FileName, request.FileType)
	if err != nil {
		writeError(w, apperrors.Unavailable("failed to presign upload", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"uploadUrl": url, "key": key})
}

// HandleReadURL - presigned GET URL for an existing attachment
func (c *MediaController) HandleReadURL(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerID(w, r); !ok {
		return
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, apperrors.InvalidArg("key is required"))
		return
	}

	url, err := c.Media.PresignRead(r.Context(), key)
	if err != nil {
		writeError(w, apperrors.Unavailable("failed to presign read", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"readUrl": url})
}
