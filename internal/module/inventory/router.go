package inventory

import (
	"github.com/gin-gonic/gin"
)

type Router struct{}

func (rt Router) Register(r *gin.Engine) {
	v1 := r.Group("/api/v1/inventory")
	{
		v1.GET("/node/all", HandlerGetAllNodes) // GET /api/v1/inventory/node/all?paging=xxx&page=xxx&page_size=xxx
	}
}
