package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-h5tree/h5tree"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	duplicates string

	// treeOptions are applied after the flag options in openTree.
	treeOptions []h5tree.Option
)

var rootCmd = &cobra.Command{
	Use:   "h5tree",
	Short: "Inspect HDF5 files",
	Long: `h5tree lists, prints and searches the groups and datasets of HDF5 files.
Entries are read from the file only when a command needs them.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		StringVar(&duplicates, "duplicates", "first", "Duplicate member names: first, last or reject")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newLogger returns a stderr logger at the level chosen by the global flags.
func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	switch {
	case quiet:
		l.SetLevel(logrus.ErrorLevel)
	case verbose:
		l.SetLevel(logrus.DebugLevel)
	default:
		l.SetLevel(logrus.WarnLevel)
	}
	return l
}

// openTree opens path read-only with the global flags applied.
func openTree(path string) (*h5tree.Tree, error) {
	policy, ok := h5tree.ParseDuplicatePolicy(duplicates)
	if !ok {
		return nil, fmt.Errorf("unknown duplicate policy %q", duplicates)
	}
	printVerbose("Opening file: %s\n", path)
	opts := append([]h5tree.Option{h5tree.WithLogger(newLogger()), h5tree.WithDuplicatePolicy(policy)}, treeOptions...)
	t, err := h5tree.Open(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return t, nil
}

// descend looks up one member per segment, starting at the root. Segments
// may also be given as a single slash-separated path.
func descend(t *h5tree.Tree, segments []string) (*h5tree.Entry, error) {
	e := t.Root()
	for _, seg := range splitSegments(segments) {
		c, err := e.Lookup(seg)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, fmt.Errorf("%s: no member %q", e.Name(), seg)
		}
		e = c
	}
	return e, nil
}

func splitSegments(args []string) []string {
	var out []string
	for _, a := range args {
		for _, s := range strings.Split(a, "/") {
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// entryInfo is the JSON form of an entry's metadata.
type entryInfo struct {
	Name       string   `json:"name"`
	Path       string   `json:"path,omitempty"`
	Kind       string   `json:"kind"`
	Category   string   `json:"category,omitempty"`
	Rows       int      `json:"rows,omitempty"`
	Cols       int      `json:"cols,omitempty"`
	Dims       []uint64 `json:"dims,omitempty"`
	Bytes      uint64   `json:"bytes,omitempty"`
	Members    int      `json:"members,omitempty"`
	Diagnostic string   `json:"diagnostic,omitempty"`
	Error      string   `json:"error,omitempty"`
}

func infoOf(p string, e *h5tree.Entry) entryInfo {
	info := entryInfo{Name: e.Name(), Path: p, Kind: e.Kind().String()}
	if err := e.Err(); err != nil {
		info.Error = err.Error()
	}
	switch {
	case e.IsDataset() && e.Evaluated():
		info.Category = e.Category().String()
		info.Rows, info.Cols = e.Shape()
		info.Dims = e.Dims()
		info.Bytes = e.ByteSize()
		info.Diagnostic = e.Diagnostic()
	case e.IsGroup():
		info.Members = e.NumChildren()
	}
	return info
}

// shapeText renders stored dimensions, "scalar" for rank zero.
func shapeText(e *h5tree.Entry) string {
	if !e.IsDataset() || !e.Evaluated() {
		return ""
	}
	dims := e.Dims()
	if len(dims) == 0 {
		return "scalar"
	}
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = fmt.Sprint(d)
	}
	return strings.Join(parts, "x")
}
