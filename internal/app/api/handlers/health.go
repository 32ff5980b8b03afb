package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fatflowers/checkout/pkg/response"
)

// @Summary      Health check
// @Description  Returns service status and database reachability
// @Tags         System
// @Produce      json
// @Success      200  {object}  handlers.RespHealth
// @Failure      503  {object}  handlers.RespHealth
// @Router       /healthz [get]
func Healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := map[string]string{"status": "ok", "database": "ok"}
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
				status["status"], status["database"] = "degraded", "unreachable"
				c.JSON(http.StatusServiceUnavailable, response.ErrorT("database unreachable", status))
				return
			}
		}
		c.JSON(http.StatusOK, response.OKT(status))
	}
}

func RegisterHealthRoutes(r gin.IRouter, db *gorm.DB) {
	r.GET("/healthz", Healthz(db))
}
