package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmpare/reghive/hive"
)

var infoCmd = &cobra.Command{
	Use:   "info <hive-file>",
	Short: "Print base block and hive-bin summary information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkArgs(args, 1, "hivectl info <hive-file>"); err != nil {
			return err
		}
		path := args[0]
		logger.Debug("opening hive", "path", path)

		h, err := hive.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer h.Close()

		base := h.BaseBlock()
		root, err := h.RootKey()
		if err != nil {
			return fmt.Errorf("root key: %w", err)
		}

		if jsonOut {
			return printJSON(map[string]any{
				"path":              path,
				"majorVersion":      base.MajorVersion(),
				"minorVersion":      base.MinorVersion(),
				"sequencesMatch":    base.SequencesMatch(),
				"lastWritten":       base.LastWrittenTime(),
				"rootKey":           root.Name(),
				"hiveBinsDataSize":  base.HiveBinsDataSize(),
				"hiveBinCount":      h.HBinCount(),
			})
		}

		printInfo("File:             %s\n", path)
		printInfo("Version:          %d.%d\n", base.MajorVersion(), base.MinorVersion())
		printInfo("Sequences match:  %v\n", base.SequencesMatch())
		printInfo("Last written:     %s\n", base.LastWrittenTime())
		printInfo("Root key:         %s\n", root.Name())
		printInfo("Hive bins size:   %d bytes\n", base.HiveBinsDataSize())
		printInfo("Hive bin count:   %d\n", h.HBinCount())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
