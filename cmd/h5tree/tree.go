package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-h5tree/h5tree"
)

var treeDepth int

func init() {
	cmd := newTreeCmd()
	cmd.Flags().IntVar(&treeDepth, "depth", 0, "Maximum depth (0 for no limit)")
	rootCmd.AddCommand(cmd)
}

func newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree <file>",
		Short: "Display the hierarchy",
		Long: `The tree command reads every entry down to --depth and prints the
hierarchy, one entry per line.

Example:
  h5tree tree data.h5
  h5tree tree data.h5 --depth 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(args)
		},
	}
}

func runTree(args []string) error {
	t, err := openTree(args[0])
	if err != nil {
		return err
	}
	defer t.Close()

	var infos []entryInfo
	err = walkDepth(t.Root(), func(p string, depth int, e *h5tree.Entry, err error) {
		if jsonOut {
			infos = append(infos, infoOf(p, e))
			return
		}
		line := strings.Repeat("  ", depth) + e.Name()
		switch {
		case err != nil:
			line += fmt.Sprintf(" [error: %v]", err)
		case p == "/":
		case e.IsGroup():
			line += "/"
		case e.IsDataset():
			line += fmt.Sprintf(" (%s %s)", e.Category(), shapeText(e))
		default:
			line += " [" + e.Kind().String() + "]"
		}
		fmt.Println(line)
	})
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(infos)
	}
	return nil
}

// walkDepth walks below root, reporting each entry's depth and honoring
// --depth. Groups at the depth limit are listed but their members are not
// read. Evaluation errors are reported, not returned.
func walkDepth(root *h5tree.Entry, fn func(p string, depth int, e *h5tree.Entry, err error)) error {
	return h5tree.Walk(root, func(p string, e *h5tree.Entry, err error) error {
		depth := 0
		if p != "/" {
			depth = strings.Count(p, "/")
		}
		fn(p, depth, e, err)
		if treeDepth > 0 && depth >= treeDepth {
			return h5tree.ErrSkipGroup
		}
		return nil
	})
}
