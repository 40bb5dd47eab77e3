// Package h5write encodes an in-memory container model as an HDF5 file.
//
// The encoder always produces a complete snapshot: a version 3 superblock
// with 8-byte offsets and lengths, followed by every dataset payload and
// object header in post-order, with the root group header last. Groups use
// compact link storage (Link Info, Group Info and one hard Link message per
// member) inside version 2 object headers.
//
// # File Layout
//
//	offset 0     superblock v3 (48 bytes)
//	...          dataset payload, dataset object header (per dataset)
//	...          group object header (after all of its members)
//	EOF-n        root group object header
//
// Only contiguous storage is written. Chunking, filters, attributes and
// variable-length types are not produced.
//
// # Supported Datatypes
//
//   - fixed-point integers of 1, 2, 4 and 8 bytes, signed or unsigned
//   - IEEE floating point of 4 and 8 bytes
//   - fixed-length, null-padded ASCII strings
//   - compound records of the above (version 3 member encoding)
//
// All multi-byte values are little-endian.
package h5write
