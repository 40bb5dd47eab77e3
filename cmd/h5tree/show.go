package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-h5tree/h5tree"
)

func init() {
	rootCmd.AddCommand(newShowCmd())
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <file> <name>...",
		Short: "Print a dataset",
		Long: `The show command descends one member per name and prints the data of the
dataset it reaches. Matrices are printed one row per line, strings one value
per line and channel-location tables as a table.

Example:
  h5tree show data.h5 weights
  h5tree show data.h5 group1 data
  h5tree show data.h5 chanlocs --json`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(args)
		},
	}
}

func runShow(args []string) error {
	t, err := openTree(args[0])
	if err != nil {
		return err
	}
	defer t.Close()

	e, err := descend(t, args[1:])
	if err != nil {
		return err
	}
	if !e.IsDataset() {
		return fmt.Errorf("%s is a %s, not a dataset", e.Name(), e.Kind())
	}
	printVerbose("%s\n", e)

	if jsonOut {
		return printJSON(struct {
			entryInfo
			Data any `json:"data,omitempty"`
		}{infoOf("", e), jsonData(e)})
	}

	switch e.Category() {
	case h5tree.CategoryInteger:
		rows, _ := e.AsInt()
		for _, r := range rows {
			fmt.Println(joinInts(r))
		}
	case h5tree.CategoryFloat:
		rows, _ := e.AsFloat()
		for _, r := range rows {
			fmt.Println(joinFloats(r))
		}
	case h5tree.CategoryString:
		values, _ := e.AsStrings()
		for _, v := range values {
			fmt.Println(v)
		}
	case h5tree.CategoryCompound:
		return printRecords(e)
	default:
		printInfo("%s\n", e.Diagnostic())
	}
	return nil
}

func jsonData(e *h5tree.Entry) any {
	switch e.Category() {
	case h5tree.CategoryInteger:
		rows, _ := e.AsInt()
		return rows
	case h5tree.CategoryFloat:
		rows, _ := e.AsFloat()
		return rows
	case h5tree.CategoryString:
		values, _ := e.AsStrings()
		return values
	case h5tree.CategoryCompound:
		if locs, err := e.AsChannelLocations(); err == nil {
			return locs
		}
		blob, _ := e.AsRecords()
		return blob.Rows
	}
	return nil
}

func printRecords(e *h5tree.Entry) error {
	blob, err := e.AsRecords()
	if err != nil {
		return err
	}
	header := make([]string, len(blob.Fields))
	for i, f := range blob.Fields {
		header[i] = f.Name
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	for _, row := range blob.Rows {
		cells := make([]string, len(blob.Fields))
		for i, f := range blob.Fields {
			cells[i] = formatValue(row[f.Name])
		}
		table.Append(cells)
	}
	table.Render()
	return nil
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case string:
		return x
	}
	return fmt.Sprint(v)
}

func joinInts(r []int64) string {
	parts := make([]string, len(r))
	for i, v := range r {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, " ")
}

func joinFloats(r []float64) string {
	parts := make([]string, len(r))
	for i, v := range r {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}
