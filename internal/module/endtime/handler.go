package endtime

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gridtools/internal/pkg/client/gridengine"
	"gridtools/internal/pkg/common/response"
	"gridtools/internal/pkg/endtime"
	"gridtools/internal/pkg/metrics"
)

// result is one JobReport plus the per-job error, so one failing id does not
// hide the rest of the batch.
type result struct {
	*endtime.JobReport
	Error string `json:"error,omitempty"`
}

// HandlerGetEndTimes 获取作业的预计结束时间。
//
// 查询参数 jobs、users 均为逗号分隔列表，至少提供一个。
func HandlerGetEndTimes(c *gin.Context) {
	client := gridengine.Default()
	if client == nil {
		c.JSON(http.StatusInternalServerError, response.Response{Detail: "gridengine client not initialized"})
		return
	}

	jobids := splitList(c.Query("jobs"))
	users := splitList(c.Query("users"))
	if len(jobids) == 0 && len(users) == 0 {
		c.JSON(http.StatusBadRequest, response.Response{Detail: "at least one of jobs or users is required"})
		return
	}

	resolver := endtime.NewResolver(client, slog.Default())
	ids, expandErrs := resolver.ExpandJobIDs(c.Request.Context(), jobids, users)
	details := make([]string, 0, len(expandErrs))
	for _, e := range expandErrs {
		details = append(details, e.Error())
	}

	results := make([]result, 0, len(ids))
	for _, id := range ids {
		report, err := resolver.Resolve(c.Request.Context(), id)
		if err != nil {
			metrics.JobResolutions.WithLabelValues("error").Inc()
			results = append(results, result{JobReport: &endtime.JobReport{JobID: id}, Error: err.Error()})
			continue
		}
		if report.Valid {
			metrics.JobResolutions.WithLabelValues("valid").Inc()
		} else {
			metrics.JobResolutions.WithLabelValues("invalid").Inc()
		}
		results = append(results, result{JobReport: report})
	}

	c.JSON(http.StatusOK, response.Response{Count: len(results), Results: results, Detail: strings.Join(details, "; ")})
}

func splitList(s string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
