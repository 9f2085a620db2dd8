package controllers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/neeharika666/myntra-hackerramp/clients"

	"github.com/gin-gonic/gin"
)

// MLController forwards recommendation and vision requests to the ML
// service without interpreting either side's schema.
type MLController struct {
	ml clients.MLClient
}

func NewMLController(ml clients.MLClient) *MLController {
	return &MLController{ml: ml}
}

func readPayload(c *gin.Context) (json.RawMessage, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return nil, false
	}
	return body, true
}

func writeProxied(c *gin.Context, data json.RawMessage, err error) {
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"message": "recommendation service unavailable"})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

// Recommend handles POST /api/recommend.
func (mc *MLController) Recommend(c *gin.Context) {
	payload, ok := readPayload(c)
	if !ok {
		return
	}
	data, err := mc.ml.Recommend(c.Request.Context(), payload)
	writeProxied(c, data, err)
}

// Trending handles GET /api/recommend/trending.
func (mc *MLController) Trending(c *gin.Context) {
	data, err := mc.ml.Trending(c.Request.Context())
	writeProxied(c, data, err)
}

// MapColor handles POST /api/color-map.
func (mc *MLController) MapColor(c *gin.Context) {
	payload, ok := readPayload(c)
	if !ok {
		return
	}
	data, err := mc.ml.MapColor(c.Request.Context(), payload)
	writeProxied(c, data, err)
}

// TryOn handles POST /api/try-on.
func (mc *MLController) TryOn(c *gin.Context) {
	payload, ok := readPayload(c)
	if !ok {
		return
	}
	data, err := mc.ml.TryOn(c.Request.Context(), payload)
	writeProxied(c, data, err)
}
