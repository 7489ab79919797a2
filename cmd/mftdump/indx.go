package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jcarver/mftkit/pkg/mft"
	"github.com/jcarver/mftkit/pkg/types"
)

var indxCmd = &cobra.Command{
	Use:   "indx <input>",
	Short: "Dump live and slack entries of an INDX record",
	Long: `indx parses a directory index allocation record and prints every live
entry followed by entries recovered from the slack space between the end of
the live list and the allocation boundary. Slack entries are plausibility
filtered by timestamp; live entries are printed unconditionally.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := options()
		if err != nil {
			return err
		}
		opts.FileType = types.FileTypeINDX
		f, err := mft.Open(args[0], opts)
		if err != nil {
			return err
		}
		defer f.Close()

		entries, err := f.IndexEntries()
		if err != nil {
			return err
		}
		for _, e := range entries {
			origin := "live"
			if e.Slack {
				origin = "slack"
			}
			fmt.Printf("%s\t%d\t%s\t%s\t%d\n",
				origin, e.RecordNumber, e.Filename.Name,
				e.Filename.Times.Modified.Format("2006-01-02T15:04:05Z07:00"),
				e.Filename.LogicalSize)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indxCmd)
}
