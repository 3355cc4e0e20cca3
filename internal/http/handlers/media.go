package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/velora-app/velora-backend/internal/http/response"
	"github.com/velora-app/velora-backend/internal/platform/logger"
	"github.com/velora-app/velora-backend/internal/platform/mediastore"
)

type MediaHandler struct {
	log   *logger.Logger
	media mediastore.Store
}

func NewMediaHandler(log *logger.Logger, media mediastore.Store) *MediaHandler {
	return &MediaHandler{
		log:   log.With("handler", "MediaHandler"),
		media: media,
	}
}

// Serve streams a stored object. The wildcard path is
// /<category>/<key...>, matching the keys PublicURL hands out.
func (mh *MediaHandler) Serve(c *gin.Context) {
	raw := strings.TrimPrefix(c.Param("path"), "/")
	parts := strings.SplitN(raw, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		response.RespondError(c, http.StatusNotFound, "media_not_found", nil)
		return
	}
	category := mediastore.Category(parts[0])
	switch category {
	case mediastore.CategoryAvatar, mediastore.CategoryVoice:
	default:
		response.RespondError(c, http.StatusNotFound, "media_not_found", nil)
		return
	}

	rc, err := mh.media.Open(c.Request.Context(), category, parts[1])
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "media_not_found", err)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", contentTypeForKey(parts[1]))
	c.Header("Cache-Control", "private, max-age=86400")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		mh.log.Warn("media stream aborted", "key", parts[1], "error", err)
	}
}

func contentTypeForKey(key string) string {
	switch {
	case strings.HasSuffix(key, ".png"):
		return "image/png"
	case strings.HasSuffix(key, ".jpg"), strings.HasSuffix(key, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(key, ".ogg"):
		return "audio/ogg"
	case strings.HasSuffix(key, ".mp3"):
		return "audio/mpeg"
	case strings.HasSuffix(key, ".m4a"):
		return "audio/mp4"
	default:
		return "application/octet-stream"
	}
}
