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
	"strings"

	"github.com/spf13/cobra"
)

var driversCmd = &cobra.Command{
	Use:   "drivers",
	Short: "List available backends",
	RunE:  runDrivers,
}

func init() {
	rootCmd.AddCommand(driversCmd)
}

func runDrivers(cmd *cobra.Command, args []string) error {
	logger := buildLogger()
	defer func() {
		_ = logger.Sync()
	}()

	factory := buildFactory(logger)
	defer factory.Close()

	for _, name := range factory.Drivers() {
		marker := " "
		if name == factory.DefaultDriverName() {
			marker = "*"
		}

		d, err := factory.Driver(name)
		if err != nil {
			fmt.Printf("%s %-12s (unavailable: %v)\n", marker, name, err)
			continue
		}

		levels := make([]string, 0, len(d.SupportedLevels()))
		for _, level := range d.SupportedLevels() {
			levels = append(levels, level.String())
		}
		fmt.Printf("%s %-12s levels: %s\n", marker, name, strings.Join(levels, ", "))
	}
	return nil
}
