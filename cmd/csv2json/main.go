// One-shot converter: run-table CSV in, one JSON object per line out.

package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"go-bosszp-automation/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <run-table.csv> <output.json>\n", os.Args[0])
		os.Exit(2)
	}
	csvPath, jsonPath := os.Args[1], os.Args[2]

	records, err := store.ReadRecords(csvPath)
	if err != nil {
		logger.Fatalf("❌ Failed to read %s: %v", csvPath, err)
	}

	out, err := os.Create(jsonPath)
	if err != nil {
		logger.Fatalf("❌ Failed to create %s: %v", jsonPath, err)
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			logger.Fatalf("❌ Failed to write record %d: %v", i+1, err)
		}
	}

	logger.Printf("✅ Converted %d records: %s -> %s", len(records), csvPath, jsonPath)
}
