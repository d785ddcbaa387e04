package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler 健康检查
// @Summary 健康检查
// @Tags 系统
// @Produce application/json
// @Success 200 {object} object{status=string,message=string,timestamp=int}
// @Failure 503 {object} object{status=string,message=string,timestamp=int}
// @Router /health [get]
func (h *Handler) HealthHandler(c *gin.Context) {
	ts := h.now().UnixMilli()
	if err := h.svc.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "error",
			"message":   "数据库不可用",
			"timestamp": ts,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "服务运行正常",
		"timestamp": ts,
	})
}
