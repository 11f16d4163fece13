package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type EventResponse struct {
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

// Events returns the events stored for a committed height
func (s *Service) Events(c *gin.Context) {
	height, err := strconv.ParseUint(c.Param("height"), 10, 32)
	if err != nil {
		s.fail(c, http.StatusBadRequest, http.StatusBadRequest, "invalid height")
		return
	}
	if !s.cfg.EventsEnabled {
		s.fail(c, http.StatusNotFound, http.StatusNotFound, "events are disabled on this node")
		return
	}
	if height > s.blockchain.Height() {
		s.fail(c, http.StatusNotFound, http.StatusNotFound, "height is not committed yet")
		return
	}

	events := s.blockchain.Events(height)
	result := make([]EventResponse, 0, len(events))
	for _, event := range events {
		result = append(result, EventResponse{Type: event.Type(), Value: event})
	}

	s.ok(c, result)
}
