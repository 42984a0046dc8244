package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"FlowTagger/internal/summary"
	"FlowTagger/internal/writer"
)

func main() {
	top := flag.Int("top", 0, "Number of tag rows to print (0 prints all).")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("Usage: go run ./scripts/gobana/main.go [-top N] <snapshot_dir>")
		os.Exit(1)
	}
	dir := flag.Arg(0)

	report, err := writer.ReadSnapshot(dir)
	if err != nil {
		log.Fatalf("Failed to decode snapshot %s: %v", dir, err)
	}

	fmt.Printf("Run %s generated at %s\n", report.RunID, report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Flow log: %s\nLookup table: %s\n\n", report.FlowLog, report.LookupTable)
	fmt.Println(summary.Render(report, *top))
}
