package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmpare/reghive/hive"
)

var getCmd = &cobra.Command{
	Use:   "get <hive-file> <key-path> [value-name]",
	Short: "Print one key's metadata, or one value's data if value-name is given",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkMinArgs(args, 2, "hivectl get <hive-file> <key-path> [value-name]"); err != nil {
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

		if len(args) == 3 {
			return printValue(key, args[2])
		}

		if jsonOut {
			return printJSON(map[string]any{
				"name":         key.Name(),
				"lastWritten":  key.LastWritten(),
				"subkeyCount":  key.SubkeyCount(),
				"valueCount":   key.ValueCount(),
			})
		}
		printInfo("Key:          %s\n", key.Name())
		printInfo("Last written: %s\n", key.LastWritten())
		printInfo("Subkeys:      %d\n", key.SubkeyCount())
		printInfo("Values:       %d\n", key.ValueCount())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func printValue(key *hive.Key, name string) error {
	v, err := key.Value(name)
	if err != nil {
		return fmt.Errorf("value %q: %w", name, err)
	}
	data, err := v.Data()
	if err != nil {
		return fmt.Errorf("decode value %q: %w", name, err)
	}
	if jsonOut {
		return printJSON(map[string]any{
			"name": v.Name(),
			"type": v.Type().Name(),
			"data": data.String(),
		})
	}
	printInfo("%s (%s) = %s\n", v.Name(), v.Type().Name(), data.String())
	return nil
}

// navigateTo walks a backslash-separated key path ("" or "\" addresses the
// root itself) starting from the hive's root key, the convention Windows
// registry paths use.
func navigateTo(h *hive.Hive, keyPath string) (*hive.Key, error) {
	key, err := h.RootKey()
	if err != nil {
		return nil, fmt.Errorf("root key: %w", err)
	}
	keyPath = strings.Trim(keyPath, `\`)
	if keyPath == "" {
		return key, nil
	}
	for _, part := range strings.Split(keyPath, `\`) {
		key, err = key.Subkey(part)
		if err != nil {
			return nil, fmt.Errorf("navigate to %q: %w", keyPath, err)
		}
	}
	return key, nil
}
