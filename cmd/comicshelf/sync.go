package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	syncengine "github.com/veikko/comicshelf/internal/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one catalog sync pass against the remote server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.engine.Run(cmd.Context())
		if err != nil {
			if errors.Is(err, syncengine.ErrSyncRunning) {
				fmt.Println("sync already running, nothing to do")
				return nil
			}
			return err
		}

		fmt.Printf("publishers: +%d ~%d -%d\n", result.Publishers.Added, result.Publishers.Updated, result.Publishers.Deleted)
		fmt.Printf("volumes:    +%d ~%d -%d\n", result.Volumes.Added, result.Volumes.Updated, result.Volumes.Deleted)
		fmt.Printf("issues:     +%d ~%d -%d\n", result.Issues.Added, result.Issues.Updated, result.Issues.Deleted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
