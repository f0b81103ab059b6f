package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <issue-id>",
	Short: "Show an issue's read status locally and on the remote server",
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

		fmt.Printf("local:  read=%t page=%d changed=%s\n",
			issue.Status.IsRead, issue.Status.CurrentPage, issue.Status.ChangedAt.Format(time.RFC3339))

		remoteStatus, err := a.catalog.GetReadStatus(cmd.Context(), issueID)
		if err != nil {
			return err
		}
		fmt.Printf("remote: read=%t page=%d changed=%s\n",
			remoteStatus.IsRead, remoteStatus.CurrentPage, remoteStatus.ChangedAt.Format(time.RFC3339))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
