package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"dida/config"
	"dida/logger"
)

func main() {
	analyze := flag.Bool("analyze", false, "run schema analysis on the uploaded file (requires an API key)")
	flag.Parse()

	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve home directory: %v\n", err)
		os.Exit(1)
	}
	appDir := filepath.Join(home, ".dida")

	cfg, err := config.Load(appDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger()
	if err := log.Init(filepath.Join(appDir, "logs")); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	app := NewApp(cfg, log)

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: dida [-analyze] <file.csv>")
		os.Exit(2)
	}

	upload, err := app.UploadCSV(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "upload failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("session %s: %d rows, %d columns\n", upload.SessionID, upload.Info.Rows, upload.Info.Columns)
	for _, name := range upload.Info.ColumnNames {
		fmt.Printf("  %s (%s)\n", name, upload.Info.DTypes[name])
	}

	if *analyze {
		report, err := app.AnalyzeSchema(context.Background(), upload.SessionID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "schema analysis failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("quality score: %.1f\n", report.QualityScore)
		for _, col := range report.Columns {
			fmt.Printf("  %s: %s", col.Name, col.Meaning)
			if col.IsPrimaryKey {
				fmt.Print(" [primary key]")
			}
			fmt.Println()
		}
	}
}
