package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"vidgate/config"
)

// WeatherHandler is a pure passthrough to a third-party weather feed. The
// upstream URL and API key come from configuration.
type WeatherHandler struct {
	cfg    config.Weather
	client *http.Client
}

func NewWeatherHandler(cfg config.Weather) *WeatherHandler {
	return &WeatherHandler{
		cfg: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (h *WeatherHandler) Get(c *gin.Context) {
	if h.cfg.URL == "" {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "weather feed not configured"})
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, h.cfg.URL, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	q := req.URL.Query()
	q.Set("q", c.Query("q"))
	q.Set("appid", h.cfg.APIKey)
	req.URL.RawQuery = q.Encode()

	resp, err := h.client.Do(req)
	if err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("weather upstream unreachable")
		c.JSON(http.StatusBadGateway, gin.H{"error": "weather feed unavailable"})
		return
	}
	defer resp.Body.Close()

	c.DataFromReader(resp.StatusCode, resp.ContentLength, resp.Header.Get("Content-Type"), resp.Body, nil)
}
