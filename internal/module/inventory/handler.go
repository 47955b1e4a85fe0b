package inventory

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gridtools/internal/pkg/client/inventory"
	"gridtools/internal/pkg/common/response"
	"gridtools/internal/pkg/model"
)

// HandlerGetAllNodes 获取库存数据库中的节点列表（可分页）。
func HandlerGetAllNodes(c *gin.Context) {
	client := inventory.Default()
	if client == nil {
		c.JSON(http.StatusInternalServerError, response.Response{Detail: "inventory client not initialized"})
		return
	}

	includeRetired := c.Query("retired") == "true"

	nodes, err := client.GetNodes(c.Request.Context(), includeRetired)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Response{Detail: err.Error()})
		return
	}

	total := len(nodes)

	// 分页开关，默认 true
	var pagingFlag struct {
		Paging *bool `form:"paging"`
	}
	_ = c.ShouldBindQuery(&pagingFlag)
	paging := true
	if pagingFlag.Paging != nil {
		paging = *pagingFlag.Paging
	}

	if paging {
		var pq model.PagingQuery
		_ = c.ShouldBindQuery(&pq)
		pq.SetDefaults(1, 20, 100)
		if err := pq.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, response.Response{Detail: "invalid paging parameters"})
			return
		}
		start := pq.Offset()
		if start > total {
			start = total
		}
		end := start + pq.Limit()
		if end > total {
			end = total
		}
		pageSlice := nodes[start:end]
		prevURL, nextURL := response.BuildPageLinks(c.Request.URL, pq.Page, pq.PageSize, total)
		c.JSON(http.StatusOK, response.Response{Count: total, Previous: prevURL, Next: nextURL, Results: pageSlice})
		return
	}

	c.JSON(http.StatusOK, response.Response{Count: total, Results: nodes})
}
