package h5write

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrName reports a member name that cannot be stored as a link.
var ErrName = errors.New("invalid member name")

var signature = []byte{0x89, 'H', 'D', 'F', '\r', '\n', 0x1a, '\n'}

// superblockSize is the size of a version 3 superblock with 8-byte offsets.
const superblockSize = 12 + 4*offsetSize + 4

// Encode returns the complete file image of the tree rooted at root.
// The root group's own Name is not stored.
func Encode(root *Group) ([]byte, error) {
	e := &encoder{}
	e.zeros(superblockSize)

	rootAddr, err := writeGroup(e, root)
	if err != nil {
		return nil, err
	}

	var sb encoder
	sb.bytes(signature)
	sb.u8(3)
	sb.u8(offsetSize)
	sb.u8(lengthSize)
	sb.u8(0)
	sb.offset(0)
	sb.offset(undefinedAddress)
	sb.offset(e.pos())
	sb.offset(rootAddr)
	sb.u32(lookup3(sb.buf))
	copy(e.buf, sb.buf)

	return e.buf, nil
}

// writeGroup writes every member before the group's own header, so all link
// targets are known when the header is encoded.
func writeGroup(e *encoder, g *Group) (uint64, error) {
	msgs := make([]message, 0, len(g.Children)+2)
	msgs = append(msgs, linkInfoMessage(), groupInfoMessage())

	for _, c := range g.Children {
		name := c.NodeName()
		if name == "" || name == "." || strings.Contains(name, "/") {
			return 0, fmt.Errorf("%w: %q", ErrName, name)
		}

		var addr uint64
		var err error
		switch n := c.(type) {
		case *Group:
			addr, err = writeGroup(e, n)
		case *Dataset:
			addr, err = writeDataset(e, n)
		default:
			err = fmt.Errorf("unknown node type %T", c)
		}
		if err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		msgs = append(msgs, linkMessage(name, addr))
	}

	return writeHeader(e, msgs, minGroupChunk)
}

// writeDataset writes the payload followed by the dataset header. An
// empty payload still gets a defined address.
func writeDataset(e *encoder, d *Dataset) (uint64, error) {
	if err := d.validate(); err != nil {
		return 0, err
	}
	dataAddr := e.pos()
	e.bytes(d.Data)

	return writeHeader(e, []message{
		dataspaceMessage(d.Dims),
		datatypeMessage(d.Type),
		layoutMessage(dataAddr, uint64(len(d.Data))),
	}, 0)
}

// WriteFile encodes root and replaces path with the result. The image is
// written to a temporary file in the same directory and renamed into place.
func WriteFile(path string, root *Group) error {
	data, err := Encode(root)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming into place: %w", err)
	}
	return nil
}
