package main

import (
	"fmt"
	"path"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-h5tree/h5tree"
)

var findKind string

func init() {
	cmd := newFindCmd()
	cmd.Flags().StringVar(&findKind, "kind", "", "Only match groups or datasets (group, dataset)")
	rootCmd.AddCommand(cmd)
}

func newFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <file> <name>",
		Short: "Find entries by name",
		Long: `The find command searches the whole file depth-first and prints the path of
every group or dataset called name. Dataset payloads are read only for --json.

Example:
  h5tree find data.h5 nested
  h5tree find data.h5 data --kind dataset`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(args)
		},
	}
}

func runFind(args []string) error {
	switch findKind {
	case "", "group", "dataset":
	default:
		return fmt.Errorf("unknown kind %q", findKind)
	}

	t, err := openTree(args[0])
	if err != nil {
		return err
	}
	defer t.Close()

	name := args[1]
	var matches []entryInfo
	err = h5tree.WalkGroups(t.Root(), func(p string, e *h5tree.Entry, err error) error {
		if err != nil {
			printVerbose("skipping %s: %v\n", p, err)
			return nil
		}
		if path.Base(p) != name || e == t.Root() || e.Kind() == h5tree.KindOther {
			return nil
		}
		if findKind != "" && e.Kind().String() != findKind {
			return nil
		}
		if jsonOut {
			if err := e.Evaluate(); err != nil {
				printVerbose("skipping %s: %v\n", p, err)
				return nil
			}
		}
		matches = append(matches, infoOf(p, e))
		return nil
	})
	if err != nil {
		return err
	}

	if jsonOut {
		if matches == nil {
			matches = []entryInfo{}
		}
		return printJSON(matches)
	}
	if len(matches) == 0 {
		return fmt.Errorf("no entry named %q", name)
	}
	for _, m := range matches {
		fmt.Println(m.Path)
	}
	return nil
}
