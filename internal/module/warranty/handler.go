package warranty

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gridtools/internal/pkg/client/warranty"
	"gridtools/internal/pkg/common/response"
	"gridtools/internal/pkg/metrics"
)

// HandlerGetWarranty 获取指定 service tag 的保修信息。
func HandlerGetWarranty(c *gin.Context) {
	client := warranty.Default()
	if client == nil {
		c.JSON(http.StatusInternalServerError, response.Response{Detail: "warranty client not initialized"})
		return
	}

	tag := strings.TrimSpace(c.Query("tag"))
	if tag == "" {
		c.JSON(http.StatusBadRequest, response.Response{Detail: "missing tag parameter"})
		return
	}

	rec, err := client.Lookup(c.Request.Context(), tag)
	if err != nil {
		metrics.WarrantyLookups.WithLabelValues("error").Inc()
		c.JSON(http.StatusBadGateway, response.Response{Detail: err.Error()})
		return
	}
	metrics.WarrantyLookups.WithLabelValues("ok").Inc()

	c.JSON(http.StatusOK, response.Response{Results: rec})
}
