package gridengine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"gridtools/config"
	"gridtools/internal/pkg/client/gridengine/models"
)

// Package-level default Client for convenience wiring.
var defaultClient *Client

// SetDefault sets the package-level default Grid Engine Client.
func SetDefault(c *Client) { defaultClient = c }

// Default returns the package-level default Grid Engine Client.
func Default() *Client { return defaultClient }

// ExecCommandFunc 定义 exec.CommandContext 的函数签名，方便 mock 测试.
type ExecCommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// Client 提供使用 qstat 命令与 Grid Engine qmaster 交互的功能.
type Client struct {
	execCommand ExecCommandFunc
	logger      *slog.Logger
	qstat       string
	timeout     time.Duration
}

// New builds a Client from config. The qstat binary defaults to "qstat" on
// PATH and every invocation is bounded by the configured command timeout.
func New(cfg config.GridEngine, logger *slog.Logger) *Client {
	qstat := cfg.QstatPath
	if qstat == "" {
		qstat = "qstat"
	}
	timeout, err := time.ParseDuration(cfg.CommandTimeout)
	if err != nil || timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		execCommand: exec.CommandContext,
		logger:      logger,
		qstat:       qstat,
		timeout:     timeout,
	}
}

// WithExecCommand replaces the command constructor, used by tests to feed
// canned qstat output.
func (c *Client) WithExecCommand(exec ExecCommandFunc) *Client {
	c.execCommand = exec
	return c
}

func (c *Client) run(ctx context.Context, args ...string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	cmd := c.execCommand(ctx, c.qstat, args...)
	out, err := cmd.CombinedOutput()
	return out, cmd.String(), err
}

// GetJobDetail 获取单个作业的详细信息, 该函数通过执行 qstat -xml -j <jobid> 实现数据获取.
// An id the scheduler does not know yields a JobDetail with Unknown set, not
// an error; qmaster reports unknown ids inside the XML document.
func (c *Client) GetJobDetail(ctx context.Context, jobid string) (*models.JobDetail, error) {
	out, cmdline, err := c.run(ctx, "-xml", "-j", jobid)
	if err != nil {
		// qstat exits non-zero for unknown jobs on some versions; the XML
		// still carries the unknown_jobs marker, so try the parse first.
		if detail, perr := parseJobDetail(jobid, out); perr == nil && detail.Unknown {
			return detail, nil
		}
		c.logger.Error("failed to exec qstat -j", "output", string(out), "cmd", cmdline, "err", err)
		return nil, fmt.Errorf("failed to exec qstat -j %s", jobid)
	}
	detail, err := parseJobDetail(jobid, out)
	if err != nil {
		c.logger.Error("unparseable qstat -j output", "cmd", cmdline, "err", err)
		return nil, err
	}
	return detail, nil
}

func parseJobDetail(jobid string, out []byte) (*models.JobDetail, error) {
	var doc detailedJobInfo
	if err := xml.Unmarshal(out, &doc); err != nil {
		return nil, fmt.Errorf("unparseable qstat -j output: %w", err)
	}
	if doc.UnknownJobs != nil {
		return &models.JobDetail{JobID: jobid, Unknown: true}, nil
	}
	return &models.JobDetail{
		JobID:     jobid,
		Owner:     doc.DjobInfo.Element.Owner,
		Resources: doc.DjobInfo.Element.HardRequests,
	}, nil
}

// GetUserJobs 获取指定用户正在运行的作业ID列表, 通过执行 qstat -xml -u <user> 实现.
// A user with nothing running yields an empty slice, never an error. The
// return is always a flat sequence regardless of how many job_list records
// the scheduler emitted.
func (c *Client) GetUserJobs(ctx context.Context, user string) ([]string, error) {
	out, cmdline, err := c.run(ctx, "-xml", "-u", user)
	if err != nil {
		c.logger.Error("failed to exec qstat -u", "output", string(out), "cmd", cmdline, "err", err)
		return nil, fmt.Errorf("failed to exec qstat -u %s", user)
	}
	var doc jobInfoList
	if err := xml.Unmarshal(out, &doc); err != nil {
		c.logger.Error("unparseable qstat -u output", "cmd", cmdline, "err", err)
		return nil, fmt.Errorf("unparseable qstat -u output: %w", err)
	}
	jobids := make([]string, 0, len(doc.Running))
	for _, j := range doc.Running {
		if j.JobNumber == "" {
			continue
		}
		jobids = append(jobids, j.JobNumber)
	}
	return jobids, nil
}

// GetRunningTasks 获取属于某作业的运行中任务, 通过执行 qstat -u <owner> 并按作业ID过滤实现.
// Each matching line carries 9 or 10 whitespace fields:
// job-ID prior name user state start-date start-time queue slots [ja-task-ID]
// The ja-task-ID column is absent for non-array jobs; such tasks get id 0.
func (c *Client) GetRunningTasks(ctx context.Context, owner, jobid string) (models.Tasks, error) {
	tasks := make(models.Tasks, 0)
	out, cmdline, err := c.run(ctx, "-u", owner)
	if err != nil {
		c.logger.Error("failed to exec qstat -u", "output", string(out), "cmd", cmdline, "err", err)
		return nil, fmt.Errorf("failed to exec qstat -u %s", owner)
	}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		// Header and separator lines never start with the job id.
		if len(fields) == 0 || fields[0] != jobid {
			continue
		}
		task, err := parseTaskLine(fields)
		if err != nil {
			c.logger.Warn("invalid qstat task line, skip", "line", line, "err", err)
			continue
		}
		tasks = append(tasks, *task)
	}
	return tasks, nil
}

// parseTaskLine maps one qstat listing line onto a Task by explicit field
// count: 9 fields means the ja-task-ID column is missing.
func parseTaskLine(fields []string) (*models.Task, error) {
	if len(fields) != 9 && len(fields) != 10 {
		return nil, fmt.Errorf("expected 9 or 10 fields, got %d", len(fields))
	}
	taskID := 0
	if len(fields) == 10 {
		id, err := strconv.Atoi(fields[9])
		if err != nil {
			return nil, fmt.Errorf("bad ja-task-ID %q: %w", fields[9], err)
		}
		taskID = id
	}
	return &models.Task{
		JobID:     fields[0],
		Priority:  fields[1],
		Name:      fields[2],
		User:      fields[3],
		State:     fields[4],
		StartDate: fields[5],
		StartTime: fields[6],
		Queue:     fields[7],
		Slots:     fields[8],
		TaskID:    taskID,
	}, nil
}
