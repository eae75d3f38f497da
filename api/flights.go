package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Domenick1991/flightdashboard/internal/broadcast"
	"github.com/Domenick1991/flightdashboard/internal/domain"
	"github.com/Domenick1991/flightdashboard/internal/service/flights"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FlightHandler struct {
	service flights.FlightUseCase
	events  broadcast.Publisher
	log     *zap.Logger
}

func NewFlightHandler(service flights.FlightUseCase, events broadcast.Publisher, log *zap.Logger) *FlightHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &FlightHandler{service: service, events: events, log: log}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.POST("", h.add)
	router.PUT("", h.update)
	router.DELETE("/:id", h.delete)
}

// list never fails: a store fault is logged and reported as no flights.
func (h *FlightHandler) list(c *gin.Context) {
	views, err := h.service.ListFlights(c.Request.Context())
	if err != nil {
		h.log.Error("list flights failed, returning empty list", zap.Error(err))
		views = []domain.FlightView{}
	}
	c.JSON(http.StatusOK, views)
}

func (h *FlightHandler) get(c *gin.Context) {
	flight, err := h.service.GetFlight(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if flight == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "flight not found"})
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) add(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req *domain.FlightCreate
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	view, err := h.service.AddFlight(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, flights.ErrNilFlight) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	h.publish(c, broadcast.NewFlightAdded(view))
	c.JSON(http.StatusCreated, view)
}

// update echoes the submitted flight and broadcasts it even when no record
// matched. A missing or null body is rejected.
func (h *FlightHandler) update(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req *domain.Flight
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": flights.ErrNilFlight.Error()})
		return
	}

	flight, err := h.service.UpdateFlight(c.Request.Context(), *req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.publish(c, broadcast.NewFlightUpdated(flight))
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) delete(c *gin.Context) {
	id := c.Param("id")
	deleted, err := h.service.DeleteFlight(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if deleted {
		h.publish(c, broadcast.NewFlightDeleted(id))
	}
	c.JSON(http.StatusOK, deleted)
}

// publish runs after the write and before the response. A failure is
// logged; the write has already happened and is still reported.
func (h *FlightHandler) publish(c *gin.Context, event broadcast.Event) {
	if h.events == nil {
		return
	}
	if err := h.events.Publish(c.Request.Context(), event); err != nil {
		h.log.Warn("broadcast failed", zap.String("event", string(event.Kind)), zap.Error(err))
	}
}
