package main

import (
	"os"

	"github.com/pterm/pterm"

	"github.com/nguyentantai21042004/meeting-flow/internal/errors"
)

func main() {
	if err := Execute(); err != nil {
		pterm.Error.Println(err)
		for _, hint := range errors.GetAllHints(err) {
			pterm.Info.Println(hint)
		}
		os.Exit(1)
	}
}
