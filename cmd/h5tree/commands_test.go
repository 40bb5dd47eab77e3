package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-h5tree/h5tree"
)

func TestLsCommand(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		args        []string
		json        bool
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "root of integers",
			file:        "integers.h5",
			wantContain: []string{"NAME", "int8", "uint64", "integer", "40"},
		},
		{
			name:        "nested group by segments",
			file:        "groups.h5",
			args:        []string{"group1", "subgroup"},
			wantContain: []string{"nested", "dataset", "3"},
		},
		{
			name:        "nested group by path",
			file:        "groups.h5",
			args:        []string{"group1/subgroup"},
			wantContain: []string{"nested"},
		},
		{
			name:        "dangling links",
			file:        "dangling_link.h5",
			wantContain: []string{"real_data", "missing", "other"},
		},
		{
			name:        "json",
			file:        "multidim.h5",
			json:        true,
			wantContain: []string{`"name": "2d"`, `"category": "float"`},
		},
		{
			name:    "not a group",
			file:    "scalar.h5",
			args:    []string{"scalar"},
			wantErr: true,
		},
		{
			name:    "missing member",
			file:    "groups.h5",
			args:    []string{"nope"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			jsonOut = tt.json

			args := append([]string{testFile(t, tt.file)}, tt.args...)
			output, err := captureOutput(t, func() error { return runLs(args) })
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.json {
				assert.True(t, json.Valid([]byte(output)), output)
			}
			for _, want := range tt.wantContain {
				assert.Contains(t, output, want)
			}
		})
	}
}

func TestShowCommand(t *testing.T) {
	tests := []struct {
		name string
		file string
		args []string
		json bool
		want string
	}{
		{"integers", "integers.h5", []string{"int16"}, false, "1 2 3 4 5\n"},
		{"floats", "floats.h5", []string{"float32"}, false, "1.5 2.5 3.5\n"},
		{"strings", "strings.h5", []string{"fixed"}, false, "hello\nworld\n"},
		{"matrix", "multidim.h5", []string{"2d"}, false, "0 1 2 3\n4 5 6 7\n8 9 10 11\n"},
		{"nested", "groups.h5", []string{"group1", "subgroup", "nested"}, false, "4 5 6\n"},
		{"scalar json", "scalar.h5", []string{"scalar"}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			jsonOut = tt.json

			args := append([]string{testFile(t, tt.file)}, tt.args...)
			output, err := captureOutput(t, func() error { return runShow(args) })
			require.NoError(t, err)
			if !tt.json {
				assert.Equal(t, tt.want, output)
				return
			}
			var got struct {
				Kind string    `json:"kind"`
				Data [][]int64 `json:"data"`
			}
			require.NoError(t, json.Unmarshal([]byte(output), &got))
			assert.Equal(t, "dataset", got.Kind)
			assert.Equal(t, [][]int64{{42}}, got.Data)
		})
	}
}

func TestShowChannelLocations(t *testing.T) {
	resetFlags()
	path := filepath.Join(t.TempDir(), "chanlocs.h5")
	w, err := h5tree.Create(path)
	require.NoError(t, err)
	require.NoError(t, w.Root().WriteChannelLocations("chanlocs", []h5tree.ChannelLocation{
		{Labels: "Cz", Type: "EEG", Theta: 0, Radius: 0, Z: 1, Urchan: 1},
		{Labels: "Pz", Type: "EEG", Theta: 180, Radius: 0.25, X: -0.7, Z: 0.7, Urchan: 2},
	}))
	require.NoError(t, w.Close())

	output, err := captureOutput(t, func() error { return runShow([]string{path, "chanlocs"}) })
	require.NoError(t, err)
	assert.Contains(t, output, "LABELS")
	assert.Contains(t, output, "Cz")
	assert.Contains(t, output, "-0.7")

	jsonOut = true
	output, err = captureOutput(t, func() error { return runShow([]string{path, "chanlocs"}) })
	require.NoError(t, err)
	var got struct {
		Data []h5tree.ChannelLocation `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &got))
	require.Len(t, got.Data, 2)
	assert.Equal(t, "Pz", got.Data[1].Labels)
	assert.Equal(t, 180.0, got.Data[1].Theta)
}

func TestShowErrors(t *testing.T) {
	resetFlags()
	_, err := captureOutput(t, func() error {
		return runShow([]string{testFile(t, "groups.h5"), "group1"})
	})
	assert.ErrorContains(t, err, "not a dataset")

	duplicates = "sometimes"
	_, err = captureOutput(t, func() error {
		return runShow([]string{testFile(t, "groups.h5"), "group1"})
	})
	assert.ErrorContains(t, err, "duplicate policy")
}

func TestTreeCommand(t *testing.T) {
	resetFlags()
	output, err := captureOutput(t, func() error {
		return runTree([]string{testFile(t, "groups.h5")})
	})
	require.NoError(t, err)
	for _, want := range []string{"/\n", "  group1/\n", "    data (integer 3)\n", "      nested (integer 3)\n", "  group2/\n"} {
		assert.Contains(t, output, want)
	}

	treeDepth = 1
	output, err = captureOutput(t, func() error {
		return runTree([]string{testFile(t, "groups.h5")})
	})
	require.NoError(t, err)
	assert.Contains(t, output, "group1/")
	assert.NotContains(t, output, "nested")

	resetFlags()
	jsonOut = true
	output, err = captureOutput(t, func() error {
		return runTree([]string{testFile(t, "dangling_link.h5")})
	})
	require.NoError(t, err)
	var infos []map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &infos))
	assert.Equal(t, "/", infos[0]["name"])
}

func TestTreeDepthStopsReading(t *testing.T) {
	tests := []struct {
		depth     int
		opened    []string
		notOpened []string
		reads     int
	}{
		{depth: 1, opened: []string{"group1", "group2"}, notOpened: []string{"data", "subgroup", "nested"}},
		{depth: 2, opened: []string{"group1", "group2", "data", "subgroup"}, notOpened: []string{"nested"}, reads: 1},
		{depth: 0, opened: []string{"group1", "group2", "data", "subgroup", "nested"}, reads: 2},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("depth %d", tt.depth), func(t *testing.T) {
			resetFlags()
			defer resetFlags()
			treeDepth = tt.depth
			c := countStorage()

			_, err := captureOutput(t, func() error {
				return runTree([]string{testFile(t, "groups.h5")})
			})
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.opened, c.opened)
			for _, name := range tt.notOpened {
				assert.NotContains(t, c.opened, name)
			}
			assert.Equal(t, tt.reads, c.reads)
		})
	}
}

func TestFindReadsNoPayloads(t *testing.T) {
	tests := []struct {
		name  string
		json  bool
		reads int
	}{
		{name: "paths", reads: 0},
		{name: "json", json: true, reads: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			defer resetFlags()
			jsonOut = tt.json
			c := countStorage()

			output, err := captureOutput(t, func() error {
				return runFind([]string{testFile(t, "groups.h5"), "nested"})
			})
			require.NoError(t, err)
			assert.Contains(t, output, "/group1/subgroup/nested")
			assert.NotContains(t, c.opened, "data")
			assert.Equal(t, tt.reads, c.reads)
		})
	}
}

func TestFindCommand(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		kind    string
		want    string
		wantErr bool
	}{
		{name: "nested dataset", target: "nested", want: "/group1/subgroup/nested\n"},
		{name: "group", target: "subgroup", kind: "group", want: "/group1/subgroup\n"},
		{name: "kind filters", target: "subgroup", kind: "dataset", wantErr: true},
		{name: "absent", target: "absent", wantErr: true},
		{name: "bad kind", target: "data", kind: "link", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			findKind = tt.kind
			output, err := captureOutput(t, func() error {
				return runFind([]string{testFile(t, "groups.h5"), tt.target})
			})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, output)
		})
	}
}
