package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sagarc03/gallery/config"
)

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "Print the country table",
	Long: `Print the configured country table: the built-in one, or the file named by
countries.file. Use it to check a custom table before starting the server.`,
	RunE: runCountries,
}

func init() {
	countriesCmd.Flags().Bool("json", false, "print as JSON")
	rootCmd.AddCommand(countriesCmd)
}

func runCountries(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	reg, err := loadCountries(cfg.Countries)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(reg.All())
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SLUG\tFLAG\tNAME")
	for _, c := range reg.All() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", c.Slug, c.Flag, c.Name)
	}
	return w.Flush()
}
