// Package h5tree presents an HDF5 file as a tree of lazily evaluated
// entries.
//
// Opening a file evaluates only the root group. Every other entry is read
// from storage the first time it is looked up, after which its members or
// its payload stay cached until the tree is closed:
//
//	t, err := h5tree.Open("recording.h5")
//	if err != nil {
//		return err
//	}
//	defer t.Close()
//
//	ds, err := t.Dataset("weights")
//	if err != nil || ds == nil {
//		return err
//	}
//	rows, err := ds.AsFloat()
//
// Dataset payloads are decoded by category: integers and floats into
// row-major matrices, strings into their values, compound records into raw
// bytes plus decoded rows. Other datatypes evaluate successfully with an
// Unsupported payload and a diagnostic.
//
// Trees made by Create accept writes. Each write lands in the file before
// the call returns; Refresh makes the new member visible in its group.
package h5tree
