// jobendtime reports the projected end time of running Grid Engine jobs,
// derived from each task's start time plus the job's hard runtime request.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	kingpin "github.com/alecthomas/kingpin/v2"
	"github.com/prometheus/common/version"

	"gridtools/config"
	"gridtools/internal/pkg/client/gridengine"
	"gridtools/internal/pkg/endtime"
)

const endLayout = "2006-01-02 15:04:05"

func main() {
	var (
		jobsFlag   = kingpin.Flag("jobs", "Comma-separated job ids").Short('j').String()
		usersFlag  = kingpin.Flag("users", "Comma-separated user names, expanded to their running jobs").Short('u').String()
		debugFlag  = kingpin.Flag("debug", "Enable debug logging").Short('d').Bool()
		configFile = kingpin.Flag("config", "Path to YAML config file").Short('c').Envar("GRIDTOOLS_CONFIG").String()
	)
	kingpin.Version(version.Print("jobendtime"))
	kingpin.HelpFlag.Short('h')
	kingpin.Parse()

	jobids := splitList(*jobsFlag)
	users := splitList(*usersFlag)
	if len(jobids) == 0 && len(users) == 0 {
		kingpin.Fatalf("at least one of --jobs or --users is required")
	}

	logger := newLogger(*debugFlag)
	cfg, err := loadConfig(*configFile)
	if err != nil {
		logger.Error("failed to load config", slog.String("path", *configFile), slog.Any("err", err))
		os.Exit(1)
	}

	client := gridengine.New(cfg.GridEngine, logger)
	resolver := endtime.NewResolver(client, logger)
	ctx := context.Background()

	failed := false
	ids, expandErrs := resolver.ExpandJobIDs(ctx, jobids, users)
	for _, e := range expandErrs {
		// A failed user expansion is the same kind of failure as a failed
		// job query: report it, keep going.
		fmt.Fprintln(os.Stderr, e)
		failed = true
	}
	if len(ids) == 0 {
		fmt.Println("no running jobs found")
		if failed {
			os.Exit(1)
		}
		return
	}

	reports := make([]*endtime.JobReport, 0, len(ids))
	for _, id := range ids {
		report, err := resolver.Resolve(ctx, id)
		if err != nil {
			// One bad id must not stop the rest of the batch.
			fmt.Fprintf(os.Stderr, "%s: %v\n", id, err)
			failed = true
			continue
		}
		reports = append(reports, report)
	}

	render(os.Stdout, reports)
	if failed {
		os.Exit(1)
	}
}

// render prints invalid-job notices followed by the task table.
func render(w *os.File, reports []*endtime.JobReport) {
	for _, r := range reports {
		if !r.Valid {
			fmt.Fprintf(w, "%s is either invalid or not running\n", r.JobID)
		}
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "JobID\tTaskID\tOwner\tMax End Time\tRequested Run Time")
	for _, r := range reports {
		if !r.Valid {
			continue
		}
		for _, t := range r.Tasks {
			end := "unknown"
			if t.End != nil {
				end = t.End.Format(endLayout)
			}
			runtime := "none"
			if r.MaxRuntime != nil {
				runtime = endtime.FormatSeconds(*r.MaxRuntime)
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", r.JobID, t.TaskID, r.Owner, end, runtime)
		}
	}
	tw.Flush()
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
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
