package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reelproxy/internal/extract"
	"reelproxy/internal/httputil"
	"reelproxy/internal/media"
)

type videoResponse struct {
	Video     string `json:"video"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Source    string `json:"source"`
}

type errorResponse struct {
	Error     string     `json:"error"`
	Kind      media.Kind `json:"kind,omitempty"`
	Thumbnail string     `json:"thumbnail,omitempty"`
}

// handleGetVideo resolves a post URL into a direct video and thumbnail URL.
func (s *Server) handleGetVideo(c *gin.Context) {
	target := c.Query("url")
	if target == "" {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error: "missing url parameter",
			Kind:  media.KindInvalidInput,
		})
		return
	}
	if err := httputil.ValidateURL(target); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error: "invalid url: " + err.Error(),
			Kind:  media.KindInvalidInput,
		})
		return
	}
	if !httputil.HostAllowed(target, s.cfg.AllowedPostHosts) {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error: "url host is not a supported post source",
			Kind:  media.KindInvalidInput,
		})
		return
	}

	page, err := s.fetcher.FetchPage(c.Request.Context(), target)
	if err != nil {
		kind := media.KindOf(err)
		status := http.StatusInternalServerError
		switch kind {
		case media.KindNotFound:
			status = http.StatusNotFound
		case media.KindUpstreamBlocked, media.KindExhausted:
			status = http.StatusBadGateway
		}
		c.JSON(status, errorResponse{Error: err.Error(), Kind: kind})
		return
	}

	res := extract.Run(page.HTML)
	if res.VideoURL == "" {
		// Attach the thumbnail opportunistically so an image post still
		// yields a preview.
		c.JSON(http.StatusNotFound, errorResponse{
			Error:     "no video found in post",
			Kind:      media.KindExtractionMiss,
			Thumbnail: res.ThumbnailURL,
		})
		return
	}

	c.JSON(http.StatusOK, videoResponse{
		Video:     res.VideoURL,
		Thumbnail: res.ThumbnailURL,
		Source:    res.Method.String(),
	})
}

// handleDownload re-streams a resolved video URL as an attachment.
func (s *Server) handleDownload(c *gin.Context) {
	videoURL := c.Query("video")
	if videoURL == "" {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error: "missing video parameter",
			Kind:  media.KindInvalidInput,
		})
		return
	}

	err := s.relay.Stream(c.Request.Context(), videoURL, c.Writer)
	if err == nil {
		return
	}

	if c.Writer.Written() {
		// Headers and some bytes are already out; the only honest option
		// is to drop the connection.
		c.Abort()
		return
	}

	kind := media.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case media.KindInvalidInput:
		status = http.StatusBadRequest
	case media.KindStreamFailure:
		status = http.StatusBadGateway
	}
	c.JSON(status, errorResponse{Error: err.Error(), Kind: kind})
}
