// Copyright 2026 OneOffTech
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package cmd

import (
	"fmt"
	"os"

	parxy "github.com/OneOffTech/parxy-sub000"
	"github.com/OneOffTech/parxy-sub000/lib/document"
	"github.com/OneOffTech/parxy-sub000/lib/driver"
	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

var batchCmd = &cobra.Command{
	Use:   "batch <file-or-url>...",
	Short: "Parse many documents concurrently",
	Long: `Parse several files concurrently and stream one JSON result per line.

Each result reports the file, the driver used, and either the parsed
document or the failure. A backend whose credentials or quota fail is
short-circuited for the rest of the run instead of being called again.

Examples:
  # Parse three files with the default backend
  parxy batch a.pdf b.pdf c.pdf

  # Fan out over two backends, four workers
  parxy batch --drivers pdfcpu,pdfact --workers 4 *.pdf

  # Stop after the first failure
  parxy batch --stop-on-error *.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringSlice("drivers", nil, "backends to parse with (default: configured default driver)")
	batchCmd.Flags().String("level", "page", "extraction level for all files")
	batchCmd.Flags().Int("workers", 0, "concurrent workers (0 = one per CPU)")
	batchCmd.Flags().Bool("stop-on-error", false, "stop delivering results after the first failure")
	batchCmd.Flags().Bool("documents", false, "include full documents in the output")
}

// batchLine is the NDJSON shape printed per result.
type batchLine struct {
	File     string             `json:"file"`
	Driver   string             `json:"driver"`
	Success  bool               `json:"success"`
	Error    string             `json:"error,omitempty"`
	Pages    int                `json:"pages,omitempty"`
	Document *document.Document `json:"document,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	drivers, _ := cmd.Flags().GetStringSlice("drivers")
	levelName, _ := cmd.Flags().GetString("level")
	workers, _ := cmd.Flags().GetInt("workers")
	stopOnError, _ := cmd.Flags().GetBool("stop-on-error")
	includeDocuments, _ := cmd.Flags().GetBool("documents")

	level, err := document.ParseLevel(levelName)
	if err != nil {
		return err
	}

	logger := buildLogger()
	defer func() {
		_ = logger.Sync()
	}()

	factory := buildFactory(logger)
	defer factory.Close()

	tasks := make([]parxy.BatchTask, len(args))
	for i, arg := range args {
		tasks[i] = parxy.BatchTask{File: driver.FromPath(arg)}
	}

	failures := 0
	for result := range factory.BatchStream(cmd.Context(), tasks, parxy.BatchOptions{
		Drivers: drivers,
		Level:   level,
		Workers: workers,
	}) {
		line := batchLine{
			File:    result.File,
			Driver:  result.Driver,
			Success: result.Success(),
			Error:   result.ErrorMessage(),
		}
		if result.Success() {
			line.Pages = len(result.Document.Pages)
			if includeDocuments {
				line.Document = result.Document
			}
		} else {
			failures++
		}

		encoded, err := sonic.Marshal(line)
		if err != nil {
			return err
		}
		_, _ = os.Stdout.Write(encoded)
		fmt.Println()

		if stopOnError && result.Failed() {
			break
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d results failed", failures, len(tasks))
	}
	return nil
}
