package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// --- Main Function ---
func main() {
	// Define command-line flags
	mode := flag.String("mode", "api", "Query mode: 'api' to query via HTTP API, 'direct' to query ClickHouse directly.")
	apiAddr := flag.String("api", "http://localhost:8080", "Base URL of flow-api.")
	report := flag.String("report", "latest", "Report id to query in api mode.")
	runID := flag.String("run", "", "Run id to query in direct mode (optional, defaults to the newest run).")
	chAddr := flag.String("clickhouse", "localhost:9000", "ClickHouse address for direct mode.")

	flag.Parse()

	log.Printf("Running in '%s' mode.", *mode)

	switch *mode {
	case "api":
		queryViaAPI(*apiAddr, *report)
	case "direct":
		directQueryClickHouse(*chAddr, *runID)
	default:
		log.Fatalf("Invalid mode: %s. Use 'api' or 'direct'.", *mode)
	}
}

// --- API Query Logic ---
func queryViaAPI(base, report string) {
	apiURL := strings.TrimRight(base, "/") + "/api/v1/reports/" + report + "/tags"

	log.Printf("Sending request to %s", apiURL)

	resp, err := http.Get(apiURL)
	if err != nil {
		log.Fatalf("Error sending request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("Error reading response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("API returned non-200 status code: %d\nResponse: %s", resp.StatusCode, string(respBody))
	}

	var prettyJSON bytes.Buffer
	err = json.Indent(&prettyJSON, respBody, "", "  ")
	if err != nil {
		log.Printf("Could not prettify JSON, printing raw response:")
		fmt.Println(string(respBody))
		return
	}

	log.Println("---")
	fmt.Println(prettyJSON.String())
}

// --- Direct ClickHouse Query Logic ---
func directQueryClickHouse(addr, runID string) {
	connOpts := clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: "default",
			Username: "default",
		},
	}

	query := `
		SELECT Tag, Count
		FROM tag_counts
		WHERE RunID = if(? = '', (SELECT argMax(RunID, GeneratedAt) FROM tag_counts), ?)
		ORDER BY Tag = 'Untagged', Tag
	`

	conn, err := clickhouse.Open(&connOpts)
	if err != nil {
		log.Fatalf("Error connecting to ClickHouse: %v", err)
	}
	defer conn.Close()

	log.Println("Successfully connected to ClickHouse.")

	rows, err := conn.Query(context.Background(), query, runID, runID)
	if err != nil {
		log.Fatalf("Error executing query: %v", err)
	}
	defer rows.Close()

	log.Println("--- Tag Counts (Direct) ---")

	var foundResult bool
	for rows.Next() {
		foundResult = true
		var (
			tag   string
			count uint64
		)

		if err := rows.Scan(&tag, &count); err != nil {
			log.Printf("Error scanning row: %v", err)
			continue
		}

		fmt.Printf("%-24s %d\n", tag, count)
	}

	if !foundResult {
		log.Println("No data found for the specified run.")
	}

	if err := rows.Err(); err != nil {
		log.Printf("An error occurred during row iteration: %v", err)
	}
}
