package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

func main() {
	err := newRootCmd(afero.NewOsFs(), os.Stdout, os.Stderr).Execute()
	if err == nil {
		return
	}

	if !errors.Is(err, errValidationFailed) {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
	}
	os.Exit(1)
}
