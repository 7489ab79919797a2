package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jcarver/mftkit/pkg/mft"
	"github.com/jcarver/mftkit/pkg/types"
)

var (
	// Global flags, overridable through MFTDUMP_* environment variables.
	fileType    string
	clusterSize int64
	volOffset   int64
	pathPrefix  string
	debugLog    bool
	progress    bool
)

var rootCmd = &cobra.Command{
	Use:   "mftdump",
	Short: "Inspect NTFS Master File Table and INDX structures",
	Long: `mftdump parses the on-disk structures of the NTFS Master File Table and
its directory indexes from a raw $MFT extraction, an NTFS volume image, or an
isolated INDX record. It reconstructs file paths, decodes data runlists, and
recovers deleted directory entries from index slack space.`,
	Version: "0.1.0",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&fileType, "filetype", "t", "mft", "Input shape: mft, image, or indx")
	pf.Int64VarP(&clusterSize, "cluster-size", "c", 4096, "Bytes per cluster (image mode)")
	pf.Int64VarP(&volOffset, "offset", "o", 0, "Byte offset of the NTFS partition inside the image")
	pf.StringVarP(&pathPrefix, "prefix", "p", "", "Prefix prepended to reconstructed paths")
	pf.BoolVar(&debugLog, "debug", false, "Emit structural trace to stderr")
	pf.BoolVar(&progress, "progress", false, "Report scan progress to stderr")

	viper.SetEnvPrefix("mftdump")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	for _, name := range []string{"filetype", "cluster-size", "offset", "prefix", "debug", "progress"} {
		if err := viper.BindPFlag(name, pf.Lookup(name)); err != nil {
			panic(err)
		}
	}

	cobra.OnInitialize(func() {
		fileType = viper.GetString("filetype")
		clusterSize = viper.GetInt64("cluster-size")
		volOffset = viper.GetInt64("offset")
		pathPrefix = viper.GetString("prefix")
		debugLog = viper.GetBool("debug")
		progress = viper.GetBool("progress")

		if debugLog {
			mft.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			})))
		}
	})
}

// options assembles the parsing options from the resolved global flags.
func options() (types.Options, error) {
	ft, ok := types.ParseFileType(fileType)
	if !ok {
		return types.Options{}, fmt.Errorf("unknown filetype %q (want mft, image, or indx)", fileType)
	}
	return types.Options{
		FileType:     ft,
		ClusterSize:  clusterSize,
		VolumeOffset: volOffset,
		PathPrefix:   pathPrefix,
	}, nil
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	execute()
}
