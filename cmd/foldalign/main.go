// Command foldalign builds a progressive multiple structure alignment
// over a set of protein structures' AA and 3Di channels (§1-§5).
package main

import (
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("foldalign: %s", err)
		os.Exit(1)
	}
}
