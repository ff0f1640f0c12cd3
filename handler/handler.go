package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"vidgate/dto"
	"vidgate/entities"
	"vidgate/service"
)

// IdentityKey is where the auth middleware parks the caller identity in the
// gin context.
const IdentityKey = "identity"

type VideoHandler struct {
	coordinator service.Coordinator
}

func NewVideoHandler(coordinator service.Coordinator) *VideoHandler {
	return &VideoHandler{coordinator: coordinator}
}

func (h *VideoHandler) Upload(c *gin.Context) {
	identity := callerIdentity(c)

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing video file"})
		return
	}

	name := c.PostForm("name")
	if name == "" {
		name = file.Filename
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable video file"})
		return
	}
	defer src.Close()

	id, err := h.coordinator.Upload(c.Request.Context(), identity, name, src, file.Size)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UploadResponse{VideoId: id})
}

func (h *VideoHandler) Fetch(c *gin.Context) {
	identity := callerIdentity(c)

	id, ok := videoID(c)
	if !ok {
		return
	}

	body, err := h.coordinator.Fetch(c.Request.Context(), identity, id)
	if err != nil {
		respondError(c, err)
		return
	}
	defer body.Close()

	// Chunked streaming; a client disconnect cancels the request context and
	// releases the backend read.
	c.DataFromReader(http.StatusOK, -1, "video/mp4", body, nil)
}

func (h *VideoHandler) List(c *gin.Context) {
	identity := callerIdentity(c)

	videos, err := h.coordinator.List(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{Videos: videos})
}

func (h *VideoHandler) Publish(c *gin.Context) {
	identity := callerIdentity(c)

	id, ok := videoID(c)
	if !ok {
		return
	}

	if err := h.coordinator.Publish(c.Request.Context(), identity, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "video published"})
}

func (h *VideoHandler) Delete(c *gin.Context) {
	identity := callerIdentity(c)

	id, ok := videoID(c)
	if !ok {
		return
	}

	if err := h.coordinator.Delete(c.Request.Context(), identity, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "video deleted"})
}

func callerIdentity(c *gin.Context) entities.Identity {
	v, exists := c.Get(IdentityKey)
	if !exists {
		return entities.Identity{}
	}
	identity, ok := v.(entities.Identity)
	if !ok {
		return entities.Identity{}
	}
	return identity
}

// videoID parses the :id path segment. A malformed id cannot name a record,
// so it gets the same response as an absent one.
func videoID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": service.ErrNotFoundOrDenied.Error()})
		return uuid.Nil, false
	}
	return id, true
}

func respondError(c *gin.Context, err error) {
	var upstreamErr *service.UpstreamError

	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFoundOrDenied):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &upstreamErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
