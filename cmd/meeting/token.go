package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Authorize YouTube uploads and store the token",
	Long: `Open the consent page in a browser, wait for the redirect on localhost and
save the resulting token to publish.token_file. Later uploads refresh it
without a browser, so run this once on a machine with a display.`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.publisher().Bootstrap(cmd.Context()); err != nil {
		return err
	}
	pterm.Success.Printfln("Token saved: %s", a.cfg.Publish.TokenFile)
	return nil
}
