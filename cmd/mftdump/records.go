package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jcarver/mftkit/pkg/mft"
)

// progressInterval is how many records pass between stderr progress updates.
const progressInterval = 100

var recordsCmd = &cobra.Command{
	Use:   "records <input>",
	Short: "Walk MFT records and print their reconstructed paths",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := options()
		if err != nil {
			return err
		}
		f, err := mft.Open(args[0], opts)
		if err != nil {
			return err
		}
		defer f.Close()

		var total int64
		if progress {
			if info, err := os.Stat(args[0]); err == nil {
				total = info.Size()
			}
		}

		activeOnly, _ := cmd.Flags().GetBool("active")
		count := 0
		err = f.Records(func(rec *mft.Record) error {
			count++
			if progress && total > 0 && count%progressInterval == 0 {
				fmt.Fprintf(os.Stderr, "\rCompleted: %0.4f%%", float64(count)*1024*100/float64(total))
			}
			meta := rec.Meta()
			if activeOnly && !meta.Active {
				return nil
			}
			kind := "f"
			if meta.Directory {
				kind = "d"
			}
			state := "inactive"
			if meta.Active {
				state = "active"
			}
			fmt.Printf("%d\t%s\t%s\t%s\n", meta.RecordNumber, kind, state, rec.Path())
			return nil
		})
		if progress && total > 0 {
			fmt.Fprintln(os.Stderr)
		}
		return err
	},
}

func init() {
	recordsCmd.Flags().Bool("active", false, "Only print records marked in use")
	rootCmd.AddCommand(recordsCmd)
}
