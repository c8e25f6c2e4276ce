// Copyright 2026 OneOffTech
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command parxy parses documents through named backends and prints the
// canonical result.
//
// Usage:
//
//	parxy parse document.pdf              # Parse with the default backend
//	parxy parse --driver pdfact doc.pdf   # Parse with a specific backend
//	parxy batch a.pdf b.pdf c.pdf         # Parse many files concurrently
//	parxy drivers                         # List available backends
package main

import (
	"github.com/OneOffTech/parxy-sub000/cmd/parxy/cmd"

	// Register the built-in parsing backends.
	_ "github.com/OneOffTech/parxy-sub000/lib/drivers/pdfact"
	_ "github.com/OneOffTech/parxy-sub000/lib/drivers/pdfcpu"
)

// https://goreleaser.com/cookbooks/using-main.version/
var version = "dev"

func main() {
	cmd.Version = version
	cmd.Execute()
}
