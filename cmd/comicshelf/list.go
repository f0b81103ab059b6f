package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:       "list [publishers|volumes|issues]",
	Short:     "List the mirrored catalog",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"publishers", "volumes", "issues"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		kind := "publishers"
		if len(args) > 0 {
			kind = args[0]
		}

		switch kind {
		case "publishers":
			publishers, err := a.publishers.List()
			if err != nil {
				return err
			}
			for _, publisher := range publishers {
				fmt.Printf("%s  %s (%d volumes)\n", publisher.ID, publisher.Name, publisher.VolumeCount)
			}
		case "volumes":
			volumes, err := a.volumes.List()
			if err != nil {
				return err
			}
			for _, volume := range volumes {
				read := " "
				if volume.Status.IsRead {
					read = "✓"
				}
				fmt.Printf("%s  [%s] %s (%d issues)\n", volume.ID, read, volume.Name, volume.IssueCount)
			}
		case "issues":
			cached, err := a.issues.ListCached()
			if err != nil {
				return err
			}
			for _, item := range cached {
				read := " "
				if item.Issue.Status.IsRead {
					read = "✓"
				}
				downloaded := ""
				if item.Comic != nil {
					downloaded = "  (downloaded)"
				}
				fmt.Printf("%s  [%s] %s%s\n", item.Issue.ID, read, item.Issue.Name, downloaded)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
