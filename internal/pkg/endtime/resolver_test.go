package endtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"gridtools/internal/pkg/client/gridengine/models"
)

// fakeScheduler serves canned responses keyed by job id / user.
type fakeScheduler struct {
	details  map[string]*models.JobDetail
	userJobs map[string][]string
	userErr  map[string]error
	tasks    map[string]models.Tasks
	err      error
}

func (f *fakeScheduler) GetJobDetail(ctx context.Context, jobid string) (*models.JobDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	if d, ok := f.details[jobid]; ok {
		return d, nil
	}
	return &models.JobDetail{JobID: jobid, Unknown: true}, nil
}

func (f *fakeScheduler) GetUserJobs(ctx context.Context, user string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	if err := f.userErr[user]; err != nil {
		return nil, err
	}
	return f.userJobs[user], nil
}

func (f *fakeScheduler) GetRunningTasks(ctx context.Context, owner, jobid string) (models.Tasks, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tasks[jobid], nil
}

func testResolver(f *fakeScheduler) *Resolver {
	return NewResolver(f, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func rt(secs int64) []models.Resource {
	return []models.Resource{{Name: "h_rt", Value: fmt.Sprintf("%d", secs)}}
}

func TestExpandJobIDs_Dedup(t *testing.T) {
	f := &fakeScheduler{userJobs: map[string][]string{
		"alice": {"100", "101"},
		"bob":   {"101", "102"},
	}}
	r := testResolver(f)

	got, errs := r.ExpandJobIDs(context.Background(), []string{"100", "100", "103"}, []string{"alice", "bob"})
	if len(errs) != 0 {
		t.Fatalf("unexpected expansion errors: %v", errs)
	}
	want := []string{"100", "103", "101", "102"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestExpandJobIDs_FailedUserReported(t *testing.T) {
	f := &fakeScheduler{
		userJobs: map[string][]string{"alice": {"100"}},
		userErr:  map[string]error{"broken": fmt.Errorf("qstat blew up")},
	}
	r := testResolver(f)

	got, errs := r.ExpandJobIDs(context.Background(), nil, []string{"broken", "alice"})
	// The failing user must not swallow the others' jobs.
	if len(got) != 1 || got[0] != "100" {
		t.Fatalf("expected [100], got %v", got)
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 expansion error, got %v", errs)
	}
	if !strings.Contains(errs[0].Error(), "broken") {
		t.Errorf("error should name the failing user: %v", errs[0])
	}
}

func TestExpandJobIDs_IdleUser(t *testing.T) {
	f := &fakeScheduler{userJobs: map[string][]string{}}
	r := testResolver(f)
	got, errs := r.ExpandJobIDs(context.Background(), nil, []string{"carol"})
	if len(errs) != 0 {
		t.Fatalf("idle user must not be an error, got %v", errs)
	}
	if len(got) != 0 {
		t.Errorf("idle user must contribute nothing, got %v", got)
	}
}

func TestResolve_UnknownJob(t *testing.T) {
	r := testResolver(&fakeScheduler{})
	report, err := r.Resolve(context.Background(), "999999")
	if err != nil {
		t.Fatalf("unknown job must not be an error: %v", err)
	}
	if report.Valid {
		t.Fatal("expected invalid report")
	}
	if len(report.Tasks) != 0 {
		t.Errorf("invalid job must contribute no tasks, got %d", len(report.Tasks))
	}
}

func TestResolve_EndTimeDerivation(t *testing.T) {
	f := &fakeScheduler{
		details: map[string]*models.JobDetail{
			"100": {JobID: "100", Owner: "alice", Resources: rt(3600)},
		},
		tasks: map[string]models.Tasks{
			"100": {
				{JobID: "100", User: "alice", StartDate: "06/20/2013", StartTime: "20:19:55", Queue: "all.q@node01", Slots: "4", TaskID: 1},
			},
		},
	}
	r := testResolver(f)

	report, err := r.Resolve(context.Background(), "100")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if !report.Valid || report.Owner != "alice" {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.MaxRuntime == nil || *report.MaxRuntime != 3600 {
		t.Fatalf("expected max runtime 3600, got %v", report.MaxRuntime)
	}
	if len(report.Tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(report.Tasks))
	}
	task := report.Tasks[0]
	wantStart := time.Date(2013, 6, 20, 20, 19, 55, 0, time.Local)
	if !task.Start.Equal(wantStart) {
		t.Errorf("start expected %v, got %v", wantStart, task.Start)
	}
	if task.End == nil {
		t.Fatal("expected an end time")
	}
	if want := wantStart.Add(time.Hour); !task.End.Equal(want) {
		t.Errorf("end expected %v, got %v", want, *task.End)
	}
}

func TestResolve_NoRuntimeLimit(t *testing.T) {
	f := &fakeScheduler{
		details: map[string]*models.JobDetail{
			"200": {JobID: "200", Owner: "bob", Resources: []models.Resource{{Name: "h_vmem", Value: "4G"}}},
		},
		tasks: map[string]models.Tasks{
			"200": {
				{JobID: "200", User: "bob", StartDate: "06/20/2013", StartTime: "08:00:00", Queue: "all.q@node02", Slots: "1"},
			},
		},
	}
	r := testResolver(f)

	report, err := r.Resolve(context.Background(), "200")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if report.MaxRuntime != nil {
		t.Fatalf("expected nil max runtime, got %d", *report.MaxRuntime)
	}
	if len(report.Tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(report.Tasks))
	}
	if report.Tasks[0].End != nil {
		t.Error("end time must be unset without a runtime limit")
	}
}

func TestResolve_NonNumericRuntime(t *testing.T) {
	f := &fakeScheduler{
		details: map[string]*models.JobDetail{
			"300": {JobID: "300", Owner: "bob", Resources: []models.Resource{{Name: "h_rt", Value: "bogus"}}},
		},
	}
	r := testResolver(f)

	report, err := r.Resolve(context.Background(), "300")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if report.MaxRuntime == nil || *report.MaxRuntime != 0 {
		t.Fatalf("non-numeric h_rt must coerce to 0, got %v", report.MaxRuntime)
	}
}

func TestResolve_QueuedJobHasNoTasks(t *testing.T) {
	f := &fakeScheduler{
		details: map[string]*models.JobDetail{
			"400": {JobID: "400", Owner: "alice", Resources: rt(60)},
		},
	}
	r := testResolver(f)

	report, err := r.Resolve(context.Background(), "400")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if !report.Valid {
		t.Fatal("queued job is still valid")
	}
	if len(report.Tasks) != 0 {
		t.Errorf("expected empty task table, got %d rows", len(report.Tasks))
	}
}

func TestResolve_BadStartTimeSkipsTask(t *testing.T) {
	f := &fakeScheduler{
		details: map[string]*models.JobDetail{
			"500": {JobID: "500", Owner: "bob", Resources: rt(60)},
		},
		tasks: map[string]models.Tasks{
			"500": {
				{JobID: "500", StartDate: "garbage", StartTime: "20:19:55", TaskID: 1},
				{JobID: "500", StartDate: "06/20/2013", StartTime: "20:19:55", TaskID: 2},
			},
		},
	}
	r := testResolver(f)

	report, err := r.Resolve(context.Background(), "500")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if len(report.Tasks) != 1 || report.Tasks[0].TaskID != 2 {
		t.Errorf("expected only task 2 to survive, got %+v", report.Tasks)
	}
}
