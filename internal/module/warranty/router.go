package warranty

import (
	"github.com/gin-gonic/gin"
)

type Router struct{}

func (rt Router) Register(r *gin.Engine) {
	v1 := r.Group("/api/v1")
	{
		v1.GET("/warranty", HandlerGetWarranty) // GET /api/v1/warranty?tag=xxx
	}
}
