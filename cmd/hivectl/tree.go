package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmpare/reghive/hive"
)

var treeDepth int

var treeCmd = &cobra.Command{
	Use:   "tree <hive-file> [key-path]",
	Short: "Print a key's subtree of names, depth-first",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkMinArgs(args, 1, "hivectl tree <hive-file> [key-path]"); err != nil {
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

		return printTree(key, treeDepth)
	},
}

func init() {
	treeCmd.Flags().IntVar(&treeDepth, "max-depth", 32, "maximum depth to print")
	rootCmd.AddCommand(treeCmd)
}

// printTree walks key's subtree via hive.Key.Walk, which bounds recursion
// with a visited-offset set and the hive's configured max depth against
// cyclic subkey references; --max-depth additionally stops printing (without
// aborting the underlying walk) once that shallower depth is reached.
func printTree(key *hive.Key, maxDepth int) error {
	err := key.Walk(func(k *hive.Key, depth int) error {
		if depth > maxDepth {
			return nil
		}
		printInfo("%s%s\n", indent(depth), k.Name())
		if depth == maxDepth && k.SubkeyCount() > 0 {
			printVerbose("%s... (max depth reached, %d subkeys omitted)\n", indent(depth+1), k.SubkeyCount())
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tree of %q: %w", key.Name(), err)
	}
	return nil
}

func indent(depth int) string {
	b := make([]byte, depth*2)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
