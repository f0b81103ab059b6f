package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download <issue-id>",
	Short: "Download an issue's comic file into the local cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		comic, err := a.comics.Download(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if !comic.Readable {
			fmt.Printf("downloaded %s (format not readable)\n", comic.FileName)
			return nil
		}
		fmt.Printf("downloaded %s\n", comic.FileName)
		return nil
	},
}

var deleteDownloadCmd = &cobra.Command{
	Use:   "delete-download <issue-id>",
	Short: "Remove an issue's cached comic file and extracted pages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.comics.Delete(args[0]); err != nil {
			return err
		}
		fmt.Println("deleted")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(deleteDownloadCmd)
}
