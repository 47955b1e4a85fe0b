// warranty looks up Dell warranty state for service tags, given directly or
// pulled from the cluster inventory database.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	kingpin "github.com/alecthomas/kingpin/v2"
	"github.com/prometheus/common/version"

	"gridtools/config"
	inventoryc "gridtools/internal/pkg/client/inventory"
	warrantyc "gridtools/internal/pkg/client/warranty"
)

func main() {
	var (
		tagsArg       = kingpin.Arg("tags", "Service tags to look up").Strings()
		fromInventory = kingpin.Flag("from-inventory", "Look up every non-retired node in the inventory database").Bool()
		debugFlag     = kingpin.Flag("debug", "Enable debug logging").Short('d').Bool()
		configFile    = kingpin.Flag("config", "Path to YAML config file").Short('c').Envar("GRIDTOOLS_CONFIG").String()
	)
	kingpin.Version(version.Print("warranty"))
	kingpin.HelpFlag.Short('h')
	kingpin.Parse()

	if len(*tagsArg) == 0 && !*fromInventory {
		kingpin.Fatalf("provide service tags or --from-inventory")
	}

	logger := newLogger(*debugFlag)
	cfg, err := loadConfig(*configFile)
	if err != nil {
		logger.Error("failed to load config", slog.String("path", *configFile), slog.Any("err", err))
		os.Exit(1)
	}

	ctx := context.Background()
	tags := dedup(*tagsArg)

	if *fromInventory {
		if cfg.Inventory.Host == "" {
			kingpin.Fatalf("--from-inventory requires an inventory section in the config file")
		}
		icli, err := inventoryc.New(cfg.Inventory)
		if err != nil {
			logger.Error("failed to initialize inventory client", slog.Any("err", err))
			os.Exit(1)
		}
		defer icli.Close()
		invTags, err := icli.GetServiceTags(ctx)
		if err != nil {
			logger.Error("failed to list service tags", slog.Any("err", err))
			os.Exit(1)
		}
		tags = dedup(append(tags, invTags...))
	}

	client := warrantyc.New(cfg.Warranty, logger)
	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "ServiceTag\tModel\tShipped\tEntitlement\tEnds")
	failed := false
	for _, tag := range tags {
		rec, err := client.Lookup(ctx, tag)
		if err != nil {
			// Keep going; one unreachable page must not sink the batch.
			fmt.Fprintf(os.Stderr, "%s: %v\n", tag, err)
			failed = true
			continue
		}
		if len(rec.Entitlements) == 0 {
			fmt.Fprintf(tw, "%s\t%s\t%s\t-\t-\n", rec.ServiceTag, rec.Model, rec.ShipDate)
			continue
		}
		for _, e := range rec.Entitlements {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", rec.ServiceTag, rec.Model, rec.ShipDate, e.Description, e.EndDate)
		}
	}
	tw.Flush()
	if failed {
		os.Exit(1)
	}
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

func dedup(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
