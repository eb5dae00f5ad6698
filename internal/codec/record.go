// Package codec implements the record wire format shared by the
// write-ahead log and segment files: a length-prefixed key followed by a
// length-prefixed value. It is the only place in the module that knows how
// a (key, value) pair is laid out as bytes.
package codec

import (
	"encoding/binary"
	"io"

	"github.com/NavyaZaveri/lsm-engine/pkg/errors"
)

// lengthWidth is the fixed width, in bytes, of the klen/vlen prefixes.
// Chosen once and never changed: a format change would orphan every
// existing WAL and segment file.
const lengthWidth = 4

// tombstone is the sentinel value-length reserved for future deletes. A
// normal write's value is never this long (the soft cap below is smaller),
// so producing it is a format error, not a legitimate value size.
const tombstone uint32 = 0xFFFFFFFF

// MaxRecordLength bounds a single decoded key or value length. It guards
// against treating corrupted bytes as a request to allocate gigabytes.
const MaxRecordLength uint32 = 64 << 20 // 64MiB

// headerWidth is the number of bytes occupied by klen+vlen together.
const headerWidth = 2 * lengthWidth

// Record is a decoded (key, value) pair read from a WAL or segment stream.
type Record struct {
	Key   []byte
	Value []byte
}

// IsTombstone reports whether this record represents a deletion marker.
// The initial engine never produces one; decode still recognizes it so a
// future Delete can be added without a format break.
func (r Record) IsTombstone() bool {
	return r.Value == nil
}

// Encode appends the wire representation of (key, value) to dst and
// returns the extended slice. Encode never produces a tombstone: callers
// passing a value long enough to collide with the sentinel get an error
// instead of silently corrupting the stream.
func Encode(dst []byte, key, value []byte) ([]byte, error) {
	if uint64(len(value)) >= uint64(tombstone) {
		return nil, errors.NewCodecError(
			nil, errors.ErrorCodeRecordTooLarge, "value length collides with the reserved tombstone sentinel",
		).WithDetail("valueLength", len(value))
	}

	var header [headerWidth]byte
	binary.LittleEndian.PutUint32(header[0:lengthWidth], uint32(len(key)))
	binary.LittleEndian.PutUint32(header[lengthWidth:headerWidth], uint32(len(value)))

	dst = append(dst, header[:]...)
	dst = append(dst, key...)
	dst = append(dst, value...)
	return dst, nil
}

// EncodeTombstone appends a deletion marker for key. Reserved for a future
// Delete operation; the current engine never calls it.
func EncodeTombstone(dst []byte, key []byte) []byte {
	var header [headerWidth]byte
	binary.LittleEndian.PutUint32(header[0:lengthWidth], uint32(len(key)))
	binary.LittleEndian.PutUint32(header[lengthWidth:headerWidth], tombstone)

	dst = append(dst, header[:]...)
	dst = append(dst, key...)
	return dst
}

// Decoder reads a sequence of records from an io.Reader, restartable at
// any record boundary. It reports the exact number of bytes consumed by
// each call to Next so callers can compute file offsets.
type Decoder struct {
	r      io.Reader
	offset int64
	header [headerWidth]byte
}

// NewDecoder wraps r for sequential record decoding starting at whatever
// offset r is currently positioned at.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Offset returns the stream position the decoder has consumed so far,
// relative to where it started reading.
func (d *Decoder) Offset() int64 {
	return d.offset
}

// Next decodes the next record and returns the number of bytes consumed.
// A clean end of stream (no bytes read at all) is reported as io.EOF. Any
// other failure — a header or payload that ends before its declared
// length, or a declared length exceeding MaxRecordLength — is a
// *errors.CodecError; the caller should treat everything from the start
// of this call as an unreadable tail and stop.
func (d *Decoder) Next() (Record, int, error) {
	n, err := io.ReadFull(d.r, d.header[:])
	if err != nil {
		if err == io.EOF && n == 0 {
			return Record{}, 0, io.EOF
		}
		return Record{}, n, errors.NewTruncatedRecordError(d.offset, n, err)
	}

	klen := binary.LittleEndian.Uint32(d.header[0:lengthWidth])
	vlen := binary.LittleEndian.Uint32(d.header[lengthWidth:headerWidth])

	if klen > MaxRecordLength {
		return Record{}, n, errors.NewRecordTooLargeError(d.offset, klen, MaxRecordLength)
	}
	if vlen != tombstone && vlen > MaxRecordLength {
		return Record{}, n, errors.NewRecordTooLargeError(d.offset+int64(n), vlen, MaxRecordLength)
	}

	key := make([]byte, klen)
	kn, err := io.ReadFull(d.r, key)
	n += kn
	if err != nil {
		return Record{}, n, errors.NewTruncatedRecordError(d.offset, n, err)
	}

	if vlen == tombstone {
		d.offset += int64(n)
		return Record{Key: key, Value: nil}, n, nil
	}

	value := make([]byte, vlen)
	vn, err := io.ReadFull(d.r, value)
	n += vn
	if err != nil {
		return Record{}, n, errors.NewTruncatedRecordError(d.offset, n, err)
	}

	d.offset += int64(n)
	return Record{Key: key, Value: value}, n, nil
}
