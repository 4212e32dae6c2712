package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmpare/reghive/hive"
)

var exportOutPath string

var exportCmd = &cobra.Command{
	Use:   "export <hive-file> [key-path]",
	Short: "Dump a key's subtree (names, types, values) as indented text",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkMinArgs(args, 1, "hivectl export <hive-file> [key-path]"); err != nil {
			return err
		}
		path := args[0]
		keyPath := ""
		if len(args) > 1 {
			keyPath = args[1]
		}

		h, err := hive.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer h.Close()

		key, err := navigateTo(h, keyPath)
		if err != nil {
			return err
		}

		var sb strings.Builder
		if err := exportKey(&sb, key); err != nil {
			return fmt.Errorf("export %q: %w", keyPath, err)
		}

		if exportOutPath == "" || exportOutPath == "-" {
			printInfo("%s", sb.String())
			return nil
		}
		return writeExportFile(exportOutPath, sb.String())
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutPath, "output", "o", "", "write export to this file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

// exportKey writes key's subtree via hive.Key.Walk, which bounds recursion
// with a visited-offset set and the hive's configured max depth against
// cyclic subkey references (spec "Cyclic references" hardening).
func exportKey(sb *strings.Builder, key *hive.Key) error {
	return key.Walk(func(k *hive.Key, depth int) error {
		prefix := indent(depth)
		fmt.Fprintf(sb, "%s[%s]\n", prefix, k.Name())

		values, err := k.Values()
		if err != nil {
			return err
		}
		for _, v := range values {
			data, err := v.Data()
			if err != nil {
				return fmt.Errorf("value %q: %w", v.Name(), err)
			}
			name := v.Name()
			if name == "" {
				name = "@"
			}
			fmt.Fprintf(sb, "%s  %s = %s (%s)\n", prefix, name, data.String(), v.Type().Name())
		}
		return nil
	})
}

func writeExportFile(path, contents string) error {
	logger.Debug("writing export", "path", path, "bytes", len(contents))
	return os.WriteFile(path, []byte(contents), 0o644)
}
