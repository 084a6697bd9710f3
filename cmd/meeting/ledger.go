package main

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/meeting-flow/internal/ledger"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "List published meetings and the next number",
	Args:  cobra.NoArgs,
	RunE:  runLedger,
}

func init() {
	rootCmd.AddCommand(ledgerCmd)
}

func runLedger(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	l := a.ledger()
	entries, err := l.Entries(ctx)
	if err != nil {
		return err
	}
	next, err := l.Next(ctx)
	if err != nil {
		return err
	}

	if jsonLog {
		return json.NewEncoder(os.Stdout).Encode(struct {
			Entries []ledger.Entry `json:"entries"`
			Next    int            `json:"next"`
		}{entries, next})
	}

	if len(entries) == 0 {
		pterm.Info.Printfln("%s is empty", a.cfg.Paths.Ledger)
	} else {
		rows := pterm.TableData{{"#", "URL"}}
		for _, e := range entries {
			rows = append(rows, []string{strconv.Itoa(e.Number), e.URL})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
			return err
		}
	}
	pterm.Info.Printfln("Next meeting number: %d", next)
	return nil
}
