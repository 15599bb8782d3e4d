package http

import (
	"pgprobe/pgprobe/internal/handler"
	"pgprobe/pgprobe/internal/service"

	"github.com/gin-gonic/gin"
)

func NewServer(chk service.Checker) *gin.Engine {
	r := gin.Default()

	h := handler.New(chk)

	r.GET("/healthz", h.Health)

	return r
}
