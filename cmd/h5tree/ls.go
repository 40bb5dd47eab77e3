package main

import (
	"fmt"
	"os"
	"path"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newLsCmd())
}

func newLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls <file> [group...]",
		Short: "List the members of a group",
		Long: `The ls command lists the members of a group with their kind, category,
shape and stored size. Each member is read to fill in its details.

Example:
  h5tree ls data.h5
  h5tree ls data.h5 group1 subgroup
  h5tree ls data.h5 group1/subgroup --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLs(args)
		},
	}
}

func runLs(args []string) error {
	t, err := openTree(args[0])
	if err != nil {
		return err
	}
	defer t.Close()

	g, err := descend(t, args[1:])
	if err != nil {
		return err
	}
	if !g.IsGroup() {
		return fmt.Errorf("%s is a %s, not a group", g.Name(), g.Kind())
	}

	base := "/" + path.Join(splitSegments(args[1:])...)
	var infos []entryInfo
	for name, e := range g.All() {
		infos = append(infos, infoOf(path.Join(base, name), e))
	}

	if jsonOut {
		if infos == nil {
			infos = []entryInfo{}
		}
		return printJSON(infos)
	}

	if len(infos) == 0 {
		printInfo("%s is empty\n", base)
		return nil
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"NAME", "KIND", "CATEGORY", "SHAPE", "BYTES"})
	for _, e := range g.Children() {
		bytes := ""
		if e.IsDataset() && e.Evaluated() {
			bytes = fmt.Sprint(e.ByteSize())
		}
		category := ""
		if e.Evaluated() && e.IsDataset() {
			category = e.Category().String()
		} else if e.Err() != nil {
			category = "error"
		}
		table.Append([]string{e.Name(), e.Kind().String(), category, shapeText(e), bytes})
	}
	table.Render()
	return nil
}
