// Package h5store implements storage.Storage for HDF5 files.
//
// Existing files are opened read-only through go-hdf5, which resolves
// hard, soft and external links and decodes chunked and filtered layouts.
// Files made with CreateContainer are writable: the Store keeps an
// in-memory model of the file, adds one member per write primitive and
// re-encodes the whole file through package h5write before the primitive
// returns. Reads of a writable container are served from that model.
//
// # Handles
//
// Every open container, group and dataset is an entry in a handle table.
// Handles are never reused within a Store. Closing a handle that still has
// open handles beneath it fails with storage.ErrBusy, so a tree must be
// released children first.
package h5store
