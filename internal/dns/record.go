package dns

import (
	"encoding/binary"
	"fmt"
)

// recordFixedSize is the size of the fixed fields that follow a resource
// record's owner name: type(2) + class(2) + ttl(4) + rdlength(2).
const recordFixedSize = 10

// ResourceRecord represents a record from a response's answer, authority or
// additional section (RFC 1035 Section 4.1.3). RData is kept opaque: only
// the resolver interprets it, and only for type A (IPv4 address) and type NS
// (a compressed name referencing the enclosing message).
type ResourceRecord struct {
	Name     []Label
	Type     RecordType
	Class    RecordClass
	TTL      uint32 // Seconds
	RDLength uint16
	RData    []byte
}

// Domain returns the textual owner name of the record. It is meaningful once
// the enclosing message's resolution pass has replaced any compression
// pointer.
func (r ResourceRecord) Domain() string {
	return joinLabels(r.Name)
}

// ParseRecord reads a resource record from offset 0 of b: an owner name via
// the label codec (pointer not yet resolved), the fixed big-endian fields,
// then exactly rdlength bytes of opaque rdata. A zero rdlength yields empty
// rdata. Returns the number of bytes consumed, or ErrParse if the buffer is
// too short for the fixed fields or the declared rdata length.
//
// Records are never re-serialized by this module, so there is no Write.
func ParseRecord(b []byte) (int, ResourceRecord, error) {
	read, labels, err := ParseLabels(b)
	if err != nil {
		return 0, ResourceRecord{}, err
	}
	if read+recordFixedSize > len(b) {
		return 0, ResourceRecord{}, fmt.Errorf("%w: need %d bytes for resource record fields, have %d", ErrParse, read+recordFixedSize, len(b))
	}
	r := ResourceRecord{
		Name:     labels,
		Type:     RecordType(binary.BigEndian.Uint16(b[read : read+2])),
		Class:    RecordClass(binary.BigEndian.Uint16(b[read+2 : read+4])),
		TTL:      binary.BigEndian.Uint32(b[read+4 : read+8]),
		RDLength: binary.BigEndian.Uint16(b[read+8 : read+10]),
	}
	read += recordFixedSize

	rdlen := int(r.RDLength)
	if read+rdlen > len(b) {
		return 0, ResourceRecord{}, fmt.Errorf("%w: record declares %d rdata bytes, have %d", ErrParse, rdlen, len(b)-read)
	}
	if rdlen > 0 {
		r.RData = make([]byte, rdlen)
		copy(r.RData, b[read:read+rdlen])
	}
	return read + rdlen, r, nil
}
