// Command fixedform recovers the block structure of fixed-form Fortran 77
// source files and prints, reformats, searches or analyzes them.
//
// Usage:
//
//	fixedform [--config file] [-v] <command> [flags] file.f ...
package main

import (
	"os"

	"github.com/soypat/go-fixedform/cmd/fixedform/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
