package tst

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// Mask bits written after every splitchar.
const (
	hasLo     byte = 1 << 0
	hasEq     byte = 1 << 1
	hasHi     byte = 1 << 2
	hasToken  byte = 1 << 3
	hasWeight byte = 1 << 4

	knownBits = hasLo | hasEq | hasHi | hasToken | hasWeight
)

// maxTokenLen bounds token lengths read from a stream, so a corrupt length
// cannot trigger a huge allocation.
const maxTokenLen = 1 << 20

// Store writes the entry count followed by the tree in pre-order.
func (l *Lookup) Store(w io.Writer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	bw := bufio.NewWriter(w)
	if err := writeUvarint(bw, uint64(l.count)); err != nil {
		return err
	}
	if err := writeTree(bw, l.root); err != nil {
		return err
	}
	return bw.Flush()
}

// Load replaces the tree and count with the snapshot read from r. On error
// the Lookup is left in an unspecified state and should be rebuilt.
func (l *Lookup) Load(r io.Reader) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	br := bufio.NewReader(r)
	count, err := binary.ReadUvarint(br)
	if err != nil {
		return malformed("entry count", err)
	}
	if count > math.MaxInt64 {
		return malformed("entry count", fmt.Errorf("%d overflows int64", count))
	}
	l.count = int64(count)
	l.root = &node{}
	return readTree(br, l.root)
}

// StoreFile writes a snapshot to path, truncating any existing file.
func (l *Lookup) StoreFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot %s: %w", path, err)
	}
	if err := l.Store(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	return f.Close()
}

// LoadFile reads a snapshot written by StoreFile.
func (l *Lookup) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open snapshot %s: %w", path, err)
	}
	defer f.Close()
	return l.Load(f)
}

// writeTree emits the tree in pre-order (node, lo, eq, hi) using an explicit
// stack, so deep trees cannot exhaust the goroutine stack.
func writeTree(w *bufio.Writer, root *node) error {
	stack := []*node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if err := writeNode(w, n); err != nil {
			return err
		}
		if n.hiKid != nil {
			stack = append(stack, n.hiKid)
		}
		if n.eqKid != nil {
			stack = append(stack, n.eqKid)
		}
		if n.loKid != nil {
			stack = append(stack, n.loKid)
		}
	}
	return nil
}

func writeNode(w *bufio.Writer, n *node) error {
	if n.set {
		unit := encodeUnit(n.splitchar)
		if err := writeUvarint(w, uint64(len(unit))); err != nil {
			return err
		}
		if _, err := w.Write(unit); err != nil {
			return err
		}
	} else if err := writeUvarint(w, 0); err != nil {
		return err
	}

	var mask byte
	if n.loKid != nil {
		mask |= hasLo
	}
	if n.eqKid != nil {
		mask |= hasEq
	}
	if n.hiKid != nil {
		mask |= hasHi
	}
	if n.terminal {
		mask |= hasToken | hasWeight
	}
	if err := w.WriteByte(mask); err != nil {
		return err
	}

	if !n.terminal {
		return nil
	}
	if err := writeUvarint(w, uint64(len(n.token))); err != nil {
		return err
	}
	if _, err := w.WriteString(n.token); err != nil {
		return err
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(n.weight))
	_, err := w.Write(buf[:])
	return err
}

// readTree is the inverse of writeTree. Children announced by a mask are
// pushed hi, eq, lo so they are read lo first.
func readTree(r *bufio.Reader, root *node) error {
	stack := []*node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		mask, err := readNode(r, n, n == root)
		if err != nil {
			return err
		}
		if mask&hasHi != 0 {
			n.hiKid = &node{}
			stack = append(stack, n.hiKid)
		}
		if mask&hasEq != 0 {
			n.eqKid = &node{}
			stack = append(stack, n.eqKid)
		}
		if mask&hasLo != 0 {
			n.loKid = &node{}
			stack = append(stack, n.loKid)
		}
	}
	return nil
}

// readNode fills n from its splitchar, mask and optional token and weight,
// and returns the mask so the caller can allocate children.
func readNode(r *bufio.Reader, n *node, isRoot bool) (byte, error) {
	unitLen, err := binary.ReadUvarint(r)
	if err != nil {
		return 0, malformed("splitchar length", err)
	}
	switch {
	case unitLen == 0:
		if !isRoot {
			return 0, malformed("splitchar", errors.New("unset splitchar below root"))
		}
	case unitLen > 3:
		return 0, malformed("splitchar", fmt.Errorf("length %d", unitLen))
	default:
		buf := make([]byte, unitLen)
		if _, err := io.ReadFull(r, buf); err != nil {
			return 0, malformed("splitchar", err)
		}
		c, err := decodeUnit(buf)
		if err != nil {
			return 0, malformed("splitchar", err)
		}
		n.splitchar = c
		n.set = true
	}

	mask, err := r.ReadByte()
	if err != nil {
		return 0, malformed("mask", err)
	}
	if mask&^knownBits != 0 {
		return 0, malformed("mask", fmt.Errorf("unknown bits %#x", mask))
	}
	if (mask&hasToken == 0) != (mask&hasWeight == 0) {
		return 0, malformed("mask", fmt.Errorf("token and weight must come together, got %#x", mask))
	}
	if unitLen == 0 && mask != 0 {
		return 0, malformed("mask", fmt.Errorf("placeholder root with mask %#x", mask))
	}

	if mask&hasToken != 0 {
		tokenLen, err := binary.ReadUvarint(r)
		if err != nil {
			return 0, malformed("token length", err)
		}
		if tokenLen == 0 || tokenLen > maxTokenLen {
			return 0, malformed("token", fmt.Errorf("length %d", tokenLen))
		}
		token := make([]byte, tokenLen)
		if _, err := io.ReadFull(r, token); err != nil {
			return 0, malformed("token", err)
		}
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, malformed("weight", err)
		}
		n.setTerminal(normalizeKey(string(token)), int64(binary.LittleEndian.Uint64(buf[:])))
	}
	return mask, nil
}

func writeUvarint(w *bufio.Writer, v uint64) error {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	_, err := w.Write(buf[:n])
	return err
}

func malformed(field string, err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: %s: %w", ErrMalformedStream, field, err)
}

// encodeUnit writes a single UTF-16 code unit the way modified UTF-8 does,
// so unpaired surrogates survive the round trip.
func encodeUnit(c uint16) []byte {
	switch {
	case c < 0x80:
		return []byte{byte(c)}
	case c < 0x800:
		return []byte{0xC0 | byte(c>>6), 0x80 | byte(c&0x3F)}
	default:
		return []byte{0xE0 | byte(c>>12), 0x80 | byte((c>>6)&0x3F), 0x80 | byte(c&0x3F)}
	}
}

func decodeUnit(b []byte) (uint16, error) {
	switch {
	case len(b) == 1 && b[0] < 0x80:
		return uint16(b[0]), nil
	case len(b) == 2 && b[0]&0xE0 == 0xC0 && b[1]&0xC0 == 0x80:
		return uint16(b[0]&0x1F)<<6 | uint16(b[1]&0x3F), nil
	case len(b) == 3 && b[0]&0xF0 == 0xE0 && b[1]&0xC0 == 0x80 && b[2]&0xC0 == 0x80:
		return uint16(b[0]&0x0F)<<12 | uint16(b[1]&0x3F)<<6 | uint16(b[2]&0x3F), nil
	}
	return 0, fmt.Errorf("invalid code unit encoding % x", b)
}
