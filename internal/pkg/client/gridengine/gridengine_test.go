package gridengine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"testing"

	"gridtools/config"
)

const sampleJobDetail = `<?xml version='1.0'?>
<detailed_job_info xmlns:xsd="http://arc.liv.ac.uk/repos/darcs/sge/source/dist/util/resources/schemas/qstat/detailed_job_info.xsd">
  <djob_info>
    <element>
      <JB_job_number>100</JB_job_number>
      <JB_owner>alice</JB_owner>
      <JB_hard_resource_list>
        <qstat_l_requests>
          <CE_name>h_rt</CE_name>
          <CE_stringval>3600</CE_stringval>
        </qstat_l_requests>
        <qstat_l_requests>
          <CE_name>h_vmem</CE_name>
          <CE_stringval>4G</CE_stringval>
        </qstat_l_requests>
      </JB_hard_resource_list>
    </element>
  </djob_info>
</detailed_job_info>`

const sampleUnknownJob = `<?xml version='1.0'?>
<detailed_job_info>
  <unknown_jobs>
    <element>
      <ST_name>999999</ST_name>
    </element>
  </unknown_jobs>
</detailed_job_info>`

const sampleUserJobsXML = `<?xml version='1.0'?>
<job_info>
  <queue_info>
    <job_list state="running">
      <JB_job_number>100</JB_job_number>
      <JB_owner>alice</JB_owner>
      <state>r</state>
    </job_list>
    <job_list state="running">
      <JB_job_number>101</JB_job_number>
      <JB_owner>alice</JB_owner>
      <state>r</state>
    </job_list>
  </queue_info>
  <job_info>
    <job_list state="pending">
      <JB_job_number>102</JB_job_number>
      <state>qw</state>
    </job_list>
  </job_info>
</job_info>`

const sampleSingleUserJobXML = `<?xml version='1.0'?>
<job_info>
  <queue_info>
    <job_list state="running">
      <JB_job_number>100</JB_job_number>
      <JB_owner>dave</JB_owner>
      <state>r</state>
    </job_list>
  </queue_info>
</job_info>`

const sampleEmptyUserJobsXML = `<?xml version='1.0'?>
<job_info>
  <queue_info>
  </queue_info>
</job_info>`

const sampleTaskListing = `job-ID  prior   name       user         state submit/start at     queue                          slots ja-task-ID
-----------------------------------------------------------------------------------------------
    100 0.55500 wrf        alice        r     06/20/2013 20:19:55 all.q@node01                       4 1
    100 0.55500 wrf        alice        r     06/20/2013 20:21:07 all.q@node02                       4 2
    100 0.55500 wrf        alice
    500 0.50000 bash       bob          r     06/20/2013 20:19:55 all.q@node03                       1`

// helper: build fake exec that returns output based on args
func fakeExec(outputFn func(name string, args ...string) string) ExecCommandFunc {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		// Use sh -c to emit prebuilt content
		script := fmt.Sprintf("cat <<'EOF'\n%s\nEOF\n", outputFn(name, args...))
		return exec.CommandContext(ctx, "sh", "-c", script)
	}
}

func newTestClient(out func(name string, args ...string) string) *Client {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := New(config.GridEngine{}, logger)
	return c.WithExecCommand(fakeExec(out))
}

func TestGetJobDetail(t *testing.T) {
	c := newTestClient(func(name string, args ...string) string {
		if len(args) == 3 && args[0] == "-xml" && args[1] == "-j" && args[2] == "100" {
			return sampleJobDetail
		}
		return ""
	})
	detail, err := c.GetJobDetail(context.Background(), "100")
	if err != nil {
		t.Fatalf("GetJobDetail error: %v", err)
	}
	if detail.Unknown {
		t.Fatal("job 100 reported unknown")
	}
	if detail.Owner != "alice" {
		t.Errorf("owner expected alice, got %q", detail.Owner)
	}
	if len(detail.Resources) != 2 {
		t.Fatalf("expected 2 hard requests, got %d", len(detail.Resources))
	}
	if detail.Resources[0].Name != "h_rt" || detail.Resources[0].Value != "3600" {
		t.Errorf("unexpected first resource: %+v", detail.Resources[0])
	}
}

func TestGetJobDetail_UnknownJob(t *testing.T) {
	c := newTestClient(func(name string, args ...string) string {
		return sampleUnknownJob
	})
	detail, err := c.GetJobDetail(context.Background(), "999999")
	if err != nil {
		t.Fatalf("GetJobDetail error: %v", err)
	}
	if !detail.Unknown {
		t.Fatal("expected Unknown to be set")
	}
	if detail.Owner != "" {
		t.Errorf("unknown job must not carry an owner, got %q", detail.Owner)
	}
}

func TestGetUserJobs(t *testing.T) {
	c := newTestClient(func(name string, args ...string) string {
		if len(args) == 3 && args[0] == "-xml" && args[1] == "-u" && args[2] == "alice" {
			return sampleUserJobsXML
		}
		return sampleEmptyUserJobsXML
	})

	jobs, err := c.GetUserJobs(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetUserJobs(alice) error: %v", err)
	}
	if len(jobs) != 2 || jobs[0] != "100" || jobs[1] != "101" {
		t.Errorf("expected [100 101], got %v", jobs)
	}

	// Pending-only / idle user: empty slice, no error.
	none, err := c.GetUserJobs(context.Background(), "carol")
	if err != nil {
		t.Fatalf("GetUserJobs(carol) error: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no jobs for idle user, got %v", none)
	}
}

// A listing with exactly one job_list record must come back as the same flat
// sequence a multi-record listing does, just with one element.
func TestGetUserJobs_SingleRecord(t *testing.T) {
	c := newTestClient(func(name string, args ...string) string {
		return sampleSingleUserJobXML
	})
	jobs, err := c.GetUserJobs(context.Background(), "dave")
	if err != nil {
		t.Fatalf("GetUserJobs(dave) error: %v", err)
	}
	if len(jobs) != 1 || jobs[0] != "100" {
		t.Errorf("expected [100], got %v", jobs)
	}
}

func TestGetRunningTasks_ArrayJob(t *testing.T) {
	c := newTestClient(func(name string, args ...string) string {
		return sampleTaskListing
	})
	tasks, err := c.GetRunningTasks(context.Background(), "alice", "100")
	if err != nil {
		t.Fatalf("GetRunningTasks error: %v", err)
	}
	// The 4-field line for job 100 is malformed and must be skipped.
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].TaskID != 1 || tasks[1].TaskID != 2 {
		t.Errorf("unexpected task ids: %d, %d", tasks[0].TaskID, tasks[1].TaskID)
	}
	if tasks[0].StartDate != "06/20/2013" || tasks[0].StartTime != "20:19:55" {
		t.Errorf("unexpected start fields: %q %q", tasks[0].StartDate, tasks[0].StartTime)
	}
	if tasks[1].Queue != "all.q@node02" {
		t.Errorf("unexpected queue: %q", tasks[1].Queue)
	}
}

func TestGetRunningTasks_SingleTaskJob(t *testing.T) {
	c := newTestClient(func(name string, args ...string) string {
		return sampleTaskListing
	})
	tasks, err := c.GetRunningTasks(context.Background(), "bob", "500")
	if err != nil {
		t.Fatalf("GetRunningTasks error: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	// 9-field line: no ja-task-ID column, id defaults to 0.
	if tasks[0].TaskID != 0 {
		t.Errorf("expected task id 0, got %d", tasks[0].TaskID)
	}
	if tasks[0].Slots != "1" {
		t.Errorf("expected 1 slot, got %q", tasks[0].Slots)
	}
}

func TestParseTaskLine_FieldCounts(t *testing.T) {
	fields := []string{"100", "0.5", "wrf", "alice", "r", "06/20/2013", "20:19:55", "all.q@n1", "4"}
	task, err := parseTaskLine(fields)
	if err != nil {
		t.Fatalf("parseTaskLine(9 fields) error: %v", err)
	}
	if task.TaskID != 0 {
		t.Errorf("expected default task id 0, got %d", task.TaskID)
	}

	if _, err := parseTaskLine(fields[:8]); err == nil {
		t.Error("expected error for 8-field line")
	}
	if _, err := parseTaskLine(append(fields[:9:9], "not-a-number")); err == nil {
		t.Error("expected error for non-numeric ja-task-ID")
	}
}
