// Command schemagraph resolves relational schema declarations.
package main

import (
	"os"

	"github.com/syssam/schemagraph/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
