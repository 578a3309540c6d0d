package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vsantos1911/meritocracia-api/internal/api/handler/v1/response"
)

// HandleHealthcheck godoc
// @Summary      Liveness check
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.HealthResponse
// @Router       /health [get]
func HandleHealthcheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, response.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}
