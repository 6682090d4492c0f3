package cache

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/go-git/go-git/v5/plumbing"
)

const (
	hashSize     = len(plumbing.ZeroHash)
	checksumSize = 8
)

// errCorrupt is returned by the decoders for any structural problem.
var errCorrupt = errors.New("corrupt cache artifact")

func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errCorrupt, fmt.Sprintf(format, args...))
}

// encoder builds an artifact in memory. finish appends the checksum.
type encoder struct {
	buf []byte
}

func newEncoder(magic string, version uint16) *encoder {
	e := &encoder{buf: make([]byte, 0, 256)}
	e.buf = append(e.buf, magic...)
	e.buf = binary.LittleEndian.AppendUint16(e.buf, version)
	return e
}

func (e *encoder) uint16(v uint16) { e.buf = binary.LittleEndian.AppendUint16(e.buf, v) }
func (e *encoder) uint32(v uint32) { e.buf = binary.LittleEndian.AppendUint32(e.buf, v) }
func (e *encoder) hash(h plumbing.Hash) {
	e.buf = append(e.buf, h[:]...)
}
func (e *encoder) bytes(b []byte) { e.buf = append(e.buf, b...) }

func (e *encoder) finish() []byte {
	return binary.LittleEndian.AppendUint64(e.buf, xxhash.Sum64(e.buf))
}

// decoder reads an artifact after its header and checksum have been verified.
type decoder struct {
	buf []byte
	off int
}

// newDecoder checks magic, version and checksum and positions the decoder
// after the version field.
func newDecoder(data []byte, magic string, version uint16) (*decoder, error) {
	if len(data) < len(magic)+2+checksumSize {
		return nil, corruptf("truncated: %d bytes", len(data))
	}
	if string(data[:len(magic)]) != magic {
		return nil, corruptf("bad magic %q", data[:len(magic)])
	}
	if v := binary.LittleEndian.Uint16(data[len(magic):]); v != version {
		return nil, corruptf("unsupported version %d", v)
	}

	body := data[:len(data)-checksumSize]
	want := binary.LittleEndian.Uint64(data[len(body):])
	if got := xxhash.Sum64(body); got != want {
		return nil, corruptf("checksum mismatch")
	}

	return &decoder{buf: body, off: len(magic) + 2}, nil
}

func (d *decoder) need(n int) error {
	if n < 0 || len(d.buf)-d.off < n {
		return corruptf("unexpected end of data at offset %d", d.off)
	}
	return nil
}

func (d *decoder) uint16() (uint16, error) {
	if err := d.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(d.buf[d.off:])
	d.off += 2
	return v, nil
}

func (d *decoder) uint32() (uint32, error) {
	if err := d.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(d.buf[d.off:])
	d.off += 4
	return v, nil
}

func (d *decoder) hash() (plumbing.Hash, error) {
	var h plumbing.Hash
	if err := d.need(hashSize); err != nil {
		return h, err
	}
	copy(h[:], d.buf[d.off:])
	d.off += hashSize
	return h, nil
}

func (d *decoder) bytes(n int) ([]byte, error) {
	if err := d.need(n); err != nil {
		return nil, err
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b, nil
}

// done fails if bytes remain before the checksum.
func (d *decoder) done() error {
	if d.off != len(d.buf) {
		return corruptf("%d trailing bytes", len(d.buf)-d.off)
	}
	return nil
}
