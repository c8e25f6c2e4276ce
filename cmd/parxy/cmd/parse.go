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

	"github.com/OneOffTech/parxy-sub000/lib/document"
	"github.com/OneOffTech/parxy-sub000/lib/driver"
	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file-or-url>",
	Short: "Parse one document",
	Long: `Parse a local file or URL with a named backend and print the result.

Examples:
  # Parse with the default backend, full JSON output
  parxy parse report.pdf

  # Parse a remote file with pdfact down to block level
  parxy parse --driver pdfact --level block https://example.com/report.pdf

  # Print the extracted text only
  parxy parse --format text report.pdf

  # Render as Markdown
  parxy parse --level block --format markdown report.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().String("driver", "", "backend to parse with (default: configured default driver)")
	parseCmd.Flags().String("level", "page", "extraction level (page, paragraph, block, line, span, word, character)")
	parseCmd.Flags().String("format", "json", "output format (json, text, markdown, contentmd)")
	parseCmd.Flags().String("page-separator", document.DefaultPageSeparator, "page separator for text output")
}

func runParse(cmd *cobra.Command, args []string) error {
	driverName, _ := cmd.Flags().GetString("driver")
	levelName, _ := cmd.Flags().GetString("level")
	format, _ := cmd.Flags().GetString("format")
	pageSeparator, _ := cmd.Flags().GetString("page-separator")

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

	doc, err := factory.Parse(cmd.Context(), driver.FromPath(args[0]), driverName, level, nil)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		encoded, err := sonic.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		_, _ = os.Stdout.Write(encoded)
		fmt.Println()
	case "text":
		fmt.Println(doc.Text(pageSeparator))
	case "markdown":
		fmt.Println(doc.Markdown())
	case "contentmd":
		fmt.Print(doc.ContentMD(document.ContentMDOptions{}))
	default:
		return fmt.Errorf("unknown format %q (expected json, text, markdown or contentmd)", format)
	}
	return nil
}
