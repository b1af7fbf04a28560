package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"nbaio/internal/archive"
)

var extractCmd = &cobra.Command{
	Use:   "extract [flags] PATH",
	Short: "Extract a ZIP or TAR archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().StringP("output", "o", "", "output directory (default: alongside the archive)")
	extractCmd.Flags().Bool("remove", false, "remove the archive after extraction")
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := args[0]
	output, _ := cmd.Flags().GetString("output")
	remove, _ := cmd.Flags().GetBool("remove")
	if output == "" {
		output = filepath.Dir(path)
	}
	opts := archive.Options{RemoveAfter: remove}

	var err error
	switch archive.Detect(path) {
	case archive.KindZip:
		err = archive.ExtractZip(cmd.Context(), path, output, opts)
	case archive.KindTar:
		err = archive.ExtractTar(cmd.Context(), path, output, opts)
	default:
		return fmt.Errorf("unsupported archive format for %q", filepath.Base(path))
	}
	if err != nil {
		return err
	}
	if !quietEnabled(cmd) {
		fmt.Fprintf(cmd.OutOrStdout(), "Extracted %s\n", filepath.Base(path))
	}
	return nil
}
