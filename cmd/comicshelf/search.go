package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veikko/comicshelf/internal/searchutil"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search mirrored publishers and volumes by title",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		query := strings.Join(args, " ")
		normalized := searchutil.Normalize(query)
		tokens := searchutil.TokenizeNormalized(normalized)

		publishers, err := a.publishers.List()
		if err != nil {
			return err
		}
		for _, publisher := range publishers {
			if searchutil.MatchesQuery(publisher.Name, normalized, tokens) {
				fmt.Printf("publisher  %s  %s\n", publisher.ID, publisher.Name)
			}
		}

		volumes, err := a.volumes.List()
		if err != nil {
			return err
		}
		for _, volume := range volumes {
			if searchutil.MatchesQuery(volume.Name, normalized, tokens) {
				fmt.Printf("volume     %s  %s\n", volume.ID, volume.Name)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
