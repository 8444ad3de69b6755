// Command wodctl is the CLI entrypoint for the workout script runtime,
// built the way the teacher's cobra root command is: a small main that
// builds the root command and executes it.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var red = color.New(color.FgRed).SprintFunc()

func main() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Printf("%s %v\n", red("Error:"), err)
		os.Exit(1)
	}
}
