package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read <issue-id>",
	Short: "Unpack an issue (downloading it first if needed) and print its page paths",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		issueID := args[0]
		issue, err := a.issues.GetByID(issueID)
		if err != nil {
			return err
		}
		if issue == nil {
			return fmt.Errorf("issue %s not in the local mirror, run sync first", issueID)
		}

		comic, err := a.comics.Cached(issueID)
		if err != nil {
			return err
		}
		if comic == nil {
			if _, err := a.comics.Download(cmd.Context(), issueID); err != nil {
				return err
			}
		}

		pages, err := a.comics.Pages(issueID)
		if err != nil {
			return err
		}

		for _, page := range pages {
			fmt.Println(page)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
}
