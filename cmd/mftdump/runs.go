package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jcarver/mftkit/pkg/mft"
)

var runsCmd = &cobra.Command{
	Use:   "runs <input> <record-number>",
	Short: "Decode the data runlist of a record's default stream",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := options()
		if err != nil {
			return err
		}
		number, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("record number: %w", err)
		}
		f, err := mft.Open(args[0], opts)
		if err != nil {
			return err
		}
		defer f.Close()

		rec, err := f.Record(number)
		if err != nil {
			return err
		}
		runs, residentSize, ok, err := rec.DataRuns()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("no default $DATA stream")
			return nil
		}
		if runs == nil {
			fmt.Printf("resident\t%d bytes\n", residentSize)
			return nil
		}
		for i, run := range runs {
			fmt.Printf("%d\tcluster %d\tlength %d\n", i, run.Offset, run.Length)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
}
