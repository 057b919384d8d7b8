// Package main provides the entry point for the indsearch CLI.
package main

import (
	"fmt"
	"os"

	"github.com/Aman-CERP/indsearch/cmd/indsearch/cmd"
	inderrors "github.com/Aman-CERP/indsearch/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, inderrors.FormatForCLI(err))
		os.Exit(1)
	}
}
