// Package endtime derives projected end times for running Grid Engine jobs
// by combining the job's hard runtime request with each task's start time.
package endtime

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"gridtools/internal/pkg/client/gridengine/models"
)

// HardRuntimeResource is the resource-request key bounding wall-clock runtime.
const HardRuntimeResource = "h_rt"

// startLayout parses the qstat start date and time fields, which must be
// joined with a space before parsing; the two fields are not meaningful on
// their own.
const startLayout = "01/02/2006 15:04:05"

// SchedulerClient is the query capability the resolver needs. gridengine.Client
// satisfies it; tests provide canned responses.
type SchedulerClient interface {
	GetJobDetail(ctx context.Context, jobid string) (*models.JobDetail, error)
	GetUserJobs(ctx context.Context, user string) ([]string, error)
	GetRunningTasks(ctx context.Context, owner, jobid string) (models.Tasks, error)
}

// TaskReport is one running task with its projected end time.
// End is nil when the job declares no hard runtime limit.
type TaskReport struct {
	TaskID int        `json:"taskid"`
	Queue  string     `json:"queue"`
	Slots  string     `json:"slots"`
	Start  time.Time  `json:"start"`
	End    *time.Time `json:"end,omitempty"`
}

// JobReport is the resolver result for one job id. An invalid report carries
// only the JobID; the scheduler did not recognize the id or the job is not
// running.
type JobReport struct {
	JobID      string       `json:"jobid"`
	Valid      bool         `json:"valid"`
	Owner      string       `json:"owner,omitempty"`
	MaxRuntime *int64       `json:"max_runtime_seconds,omitempty"`
	Tasks      []TaskReport `json:"tasks,omitempty"`
}

// Resolver answers "when will this job end" questions against an injected
// scheduler client. Verbosity is whatever the supplied logger is configured
// for; there is no package-level debug switch.
type Resolver struct {
	sched  SchedulerClient
	logger *slog.Logger
}

func NewResolver(sched SchedulerClient, logger *slog.Logger) *Resolver {
	return &Resolver{sched: sched, logger: logger}
}

// ExpandJobIDs merges directly supplied job ids with the running jobs of the
// given users, dropping duplicates and preserving first-seen order. A user
// with nothing running contributes nothing. A failed user query is skipped so
// the rest of the batch still resolves; each failure comes back as an error
// the caller must report.
func (r *Resolver) ExpandJobIDs(ctx context.Context, jobids, users []string) ([]string, []error) {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(jobids))
	var errs []error
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, id := range jobids {
		add(id)
	}
	for _, user := range users {
		ids, err := r.sched.GetUserJobs(ctx, user)
		if err != nil {
			r.logger.Warn("skipping user, job listing failed", "user", user, "err", err)
			errs = append(errs, fmt.Errorf("user %s: %w", user, err))
			continue
		}
		r.logger.Debug("expanded user to jobs", "user", user, "jobs", ids)
		for _, id := range ids {
			add(id)
		}
	}
	return out, errs
}

// Resolve builds the report for a single job id: job metadata first, then the
// running-task listing scoped to the job's owner. An unknown id yields an
// invalid report without a second query. A valid but not-running job yields a
// report with zero tasks.
func (r *Resolver) Resolve(ctx context.Context, jobid string) (*JobReport, error) {
	detail, err := r.sched.GetJobDetail(ctx, jobid)
	if err != nil {
		return nil, err
	}
	if detail.Unknown {
		r.logger.Debug("scheduler does not know job", "jobid", jobid)
		return &JobReport{JobID: jobid}, nil
	}

	report := &JobReport{
		JobID:      jobid,
		Valid:      true,
		Owner:      detail.Owner,
		MaxRuntime: r.hardRuntime(detail),
	}

	tasks, err := r.sched.GetRunningTasks(ctx, detail.Owner, jobid)
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		start, err := time.ParseInLocation(startLayout, t.StartDate+" "+t.StartTime, time.Local)
		if err != nil {
			r.logger.Warn("unparseable task start time, skip", "jobid", jobid, "taskid", t.TaskID,
				"date", t.StartDate, "time", t.StartTime, "err", err)
			continue
		}
		tr := TaskReport{TaskID: t.TaskID, Queue: t.Queue, Slots: t.Slots, Start: start}
		if report.MaxRuntime != nil {
			end := start.Add(time.Duration(*report.MaxRuntime) * time.Second)
			tr.End = &end
		}
		report.Tasks = append(report.Tasks, tr)
	}
	return report, nil
}

// hardRuntime scans the hard resource requests for h_rt. No h_rt entry means
// no runtime limit and the return is nil, surfaced upstream as an unknown end
// time. A present but non-numeric value falls back to 0 with a warning.
func (r *Resolver) hardRuntime(detail *models.JobDetail) *int64 {
	for _, res := range detail.Resources {
		if res.Name != HardRuntimeResource {
			continue
		}
		secs, err := strconv.ParseInt(res.Value, 10, 64)
		if err != nil {
			r.logger.Warn("non-numeric h_rt value, treating as 0",
				"jobid", detail.JobID, "value", res.Value)
			secs = 0
		}
		return &secs
	}
	return nil
}
