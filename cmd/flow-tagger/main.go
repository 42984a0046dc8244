package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"FlowTagger/internal/config"
	"FlowTagger/internal/engine/manager"
	"FlowTagger/internal/logging"
	"FlowTagger/internal/summary"
)

const usage = "Usage: flow-tagger [-config <config.yaml>] [-summary] <flow_log_file> <lookup_csv> <output_folder>"

func main() {
	// 1. Parse command-line arguments
	configPath := flag.String("config", "", "Optional YAML config file.")
	showSummary := flag.Bool("summary", false, "Print a tag summary table after the run.")
	flag.Usage = func() { fmt.Println(usage) }
	flag.Parse()

	if flag.NArg() != 3 {
		fmt.Println(usage)
		os.Exit(1)
	}
	in := manager.Inputs{
		FlowLog:     flag.Arg(0),
		LookupTable: flag.Arg(1),
		OutputDir:   flag.Arg(2),
	}

	// 2. Load configuration
	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			logging.Logger().WithError(err).Fatal("Failed to load config")
		}
	}
	logging.SetupFromConfig(cfg.Logging.Level)
	log := logging.WithComponent("main")

	// 3. Run the pipeline
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := manager.NewManager(cfg)
	r, err := m.Run(ctx, in)
	if closeErr := m.Close(); closeErr != nil {
		log.WithError(closeErr).Warn("Failed to close writers")
	}
	if err != nil {
		stop()
		log.WithError(err).Fatal("Flow tagging failed")
	}

	// 4. Report
	if *showSummary {
		fmt.Println(summary.Render(r, cfg.Notification.Top))
	}
	fmt.Println("Done. Output written to:", in.OutputDir)
}
