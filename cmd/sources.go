package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/brogergvhs/noveld/internal/adapters"
	"github.com/brogergvhs/noveld/internal/providers/registry"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the supported sites and output adapters",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)
		_, _ = fmt.Fprintln(w, "SCRAPER\tSITE\tURL\tLANGUAGE\tTYPE")

		for _, name := range registry.Names() {
			s, err := registry.New(name, nil)
			if err != nil {
				return err
			}
			info := s.GetSourceInfo()
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", name, info.Name, info.URL, info.Language, info.Type)
		}

		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Println()
		fmt.Println("Adapters:", strings.Join(adapters.Names(), ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
