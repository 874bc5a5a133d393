// Package httpapi is the JSON/HTTP transport for the matching engine,
// implemented against the engine's own public contract — it owns no book
// or order state.
package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"fenrir/internal/common"
	"fenrir/internal/engine"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var (
	errUnknownSide      = errors.New("unknown side")
	errUnknownOrderType = errors.New("unknown order_type")
)

const defaultDepth = 10

// Handler adapts gin requests onto a MatchingEngine.
type Handler struct {
	engine       *engine.MatchingEngine
	defaultDepth int
}

// NewHandler builds a Handler; defaultDepth is used when a request omits
// the depth query parameter for L2.
func NewHandler(e *engine.MatchingEngine, defaultDepth int) *Handler {
	if defaultDepth <= 0 {
		defaultDepth = 10
	}
	return &Handler{engine: e, defaultDepth: defaultDepth}
}

// Register mounts the engine's routes on router.
func (h *Handler) Register(router gin.IRouter) {
	router.POST("/orders", h.submit)
	router.DELETE("/orders/:symbol/:order_id", h.cancel)
	router.GET("/books/:symbol/bbo", h.bbo)
	router.GET("/books/:symbol/l2", h.l2)
}

func (h *Handler) submit(c *gin.Context) {
	var body submitRequestDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	req, err := body.toEngineRequest()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	result := h.engine.Submit(req)
	dto := submitResultToDTO(result)
	if result.Status == common.Rejected {
		c.JSON(http.StatusBadRequest, dto)
		return
	}
	c.JSON(http.StatusOK, dto)
}

func (h *Handler) cancel(c *gin.Context) {
	symbol := c.Param("symbol")
	orderID := c.Param("order_id")

	result, err := h.engine.Cancel(symbol, orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, cancelResultToDTO(result))
}

func (h *Handler) bbo(c *gin.Context) {
	symbol := c.Param("symbol")
	snap := h.engine.BBO(symbol)
	c.JSON(http.StatusOK, bboToDTO(snap))
}

func (h *Handler) l2(c *gin.Context) {
	symbol := c.Param("symbol")
	depth := h.defaultDepth
	if raw := c.Query("depth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "depth must be a positive integer"})
			return
		}
		depth = parsed
	}
	snap := h.engine.L2(symbol, depth)
	c.JSON(http.StatusOK, l2ToDTO(snap))
}

// LoggingMiddleware logs each request's method and path at info level,
// matching the teacher's direct zerolog call style.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		log.Info().Str("method", c.Request.Method).Str("path", c.Request.URL.Path).Msg("request")
		c.Next()
	}
}
