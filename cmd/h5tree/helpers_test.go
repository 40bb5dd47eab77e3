package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-h5tree/h5tree"
	"github.com/robert-malhotra/go-h5tree/internal/h5store"
	"github.com/robert-malhotra/go-h5tree/storage"
)

// testFile returns the path of a fixture in the repository testdata.
func testFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join("..", "..", "testdata", name)
	_, err := os.Stat(path)
	require.NoError(t, err, "test file not found: %s", path)
	return path
}

// resetFlags restores the global flags to their defaults.
func resetFlags() {
	verbose = false
	quiet = true
	jsonOut = false
	duplicates = "first"
	treeDepth = 0
	findKind = ""
	treeOptions = nil
}

// counting records which members a command opens and how many payloads
// it reads.
type counting struct {
	storage.Storage
	opened []string
	reads  int
}

// countStorage makes openTree route through a fresh counting store.
func countStorage() *counting {
	c := &counting{Storage: h5store.New()}
	treeOptions = []h5tree.Option{h5tree.WithStorage(c)}
	return c
}

func (c *counting) OpenChild(parent storage.Handle, name string) (storage.Handle, error) {
	c.opened = append(c.opened, name)
	return c.Storage.OpenChild(parent, name)
}

func (c *counting) ReadInts(h storage.Handle) ([]int64, error) {
	c.reads++
	return c.Storage.ReadInts(h)
}

func (c *counting) ReadFloats(h storage.Handle) ([]float64, error) {
	c.reads++
	return c.Storage.ReadFloats(h)
}

func (c *counting) ReadStrings(h storage.Handle) ([]string, error) {
	c.reads++
	return c.Storage.ReadStrings(h)
}

func (c *counting) ReadRecords(h storage.Handle) (*storage.RecordTable, error) {
	c.reads++
	return c.Storage.ReadRecords(h)
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	require.NoError(t, err)
	return buf.String(), fnErr
}
