package handler

import (
	"log"
	"net/http"

	"pgprobe/pgprobe/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	chk service.Checker
}

func New(chk service.Checker) *Handler { return &Handler{chk: chk} }

// GET /healthz
func (h *Handler) Health(c *gin.Context) {
	rep := h.chk.Check(c.Request.Context())

	if !rep.OK() {
		log.Printf("health check %s failed at %s: %s", rep.ID, rep.Stage, rep.Error)
		c.IndentedJSON(http.StatusServiceUnavailable, rep)
		return
	}

	c.IndentedJSON(http.StatusOK, rep)
}
