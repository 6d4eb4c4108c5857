package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var configAddCmd = &cobra.Command{
	Use:   "add [file.yaml]",
	Short: "Create a new config, or import an existing YAML file as one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Enter label for new config: ")
		label, _ := reader.ReadString('\n')
		label = strings.TrimSpace(label)

		store := configStore()

		if len(args) == 1 {
			if err := store.Add(label, args[0]); err != nil {
				return err
			}
			fmt.Printf("Imported %s as config %q\n", args[0], label)
			return nil
		}

		path, err := store.Create(label)
		if err != nil {
			return err
		}

		fmt.Printf("Created new config: %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configAddCmd)
}
