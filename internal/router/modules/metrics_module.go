package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MetricsModule struct{}

func NewMetricsModule() *MetricsModule { return &MetricsModule{} }

// Register exposes the default Prometheus registry at /debug/metrics.
func (m *MetricsModule) Register(rg *gin.RouterGroup) {
	rg.GET("/debug/metrics", gin.WrapH(promhttp.Handler()))
}
