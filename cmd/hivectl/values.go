package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmpare/reghive/hive"
)

var valuesCmd = &cobra.Command{
	Use:   "values <hive-file> <key-path>",
	Short: "List every value attached to a key",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkArgs(args, 2, "hivectl values <hive-file> <key-path>"); err != nil {
			return err
		}
		path, keyPath := args[0], args[1]

		h, err := hive.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer h.Close()

		key, err := navigateTo(h, keyPath)
		if err != nil {
			return err
		}

		vals, err := key.Values()
		if err != nil {
			return fmt.Errorf("values of %q: %w", keyPath, err)
		}

		if jsonOut {
			out := make([]map[string]any, 0, len(vals))
			for _, v := range vals {
				data, err := v.Data()
				if err != nil {
					return fmt.Errorf("decode value %q: %w", v.Name(), err)
				}
				out = append(out, map[string]any{
					"name": v.Name(),
					"type": v.Type().Name(),
					"data": data.String(),
				})
			}
			return printJSON(out)
		}

		for _, v := range vals {
			data, err := v.Data()
			if err != nil {
				printError("value %q: %v\n", v.Name(), err)
				continue
			}
			name := v.Name()
			if name == "" {
				name = "(default)"
			}
			printInfo("%-24s %-14s %s\n", name, v.Type().Name(), data.String())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(valuesCmd)
}
