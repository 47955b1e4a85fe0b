package endtime

import (
	"github.com/gin-gonic/gin"
)

type Router struct{}

func (rt Router) Register(r *gin.Engine) {
	v1 := r.Group("/api/v1/gridengine")
	{
		v1.GET("/endtime", HandlerGetEndTimes) // GET /api/v1/gridengine/endtime?jobs=xxx&users=xxx
	}
}
