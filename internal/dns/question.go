package dns

import (
	"encoding/binary"
	"fmt"
)

// Question represents a DNS question section entry (RFC 1035 Section 4.1.2):
// the name being asked about plus the requested record type and class.
// This module only ever sends exactly one question per message.
type Question struct {
	Name  []Label
	Type  RecordType
	Class RecordClass
}

// Domain returns the textual name of the question. It is meaningful once the
// enclosing message's resolution pass has replaced any compression pointer.
func (q Question) Domain() string {
	return joinLabels(q.Name)
}

// ParseQuestion reads a question from offset 0 of b: a name via the label
// codec (pointer not yet resolved) followed by 2 bytes qtype and 2 bytes
// qclass, big-endian. Returns the number of bytes consumed.
func ParseQuestion(b []byte) (int, Question, error) {
	read, labels, err := ParseLabels(b)
	if err != nil {
		return 0, Question{}, err
	}
	if read+4 > len(b) {
		return 0, Question{}, fmt.Errorf("%w: need %d bytes for question, have %d", ErrParse, read+4, len(b))
	}
	q := Question{
		Name:  labels,
		Type:  RecordType(binary.BigEndian.Uint16(b[read : read+2])),
		Class: RecordClass(binary.BigEndian.Uint16(b[read+2 : read+4])),
	}
	return read + 4, q, nil
}

// Write serializes the question into dest and returns the number of bytes
// written. Fails with ErrMarshal on insufficient space.
func (q Question) Write(dest []byte) (int, error) {
	written, err := WriteLabels(q.Name, dest)
	if err != nil {
		return 0, err
	}
	if written+4 > len(dest) {
		return 0, fmt.Errorf("%w: need %d bytes for question, have %d", ErrMarshal, written+4, len(dest))
	}
	binary.BigEndian.PutUint16(dest[written:written+2], uint16(q.Type))
	binary.BigEndian.PutUint16(dest[written+2:written+4], uint16(q.Class))
	return written + 4, nil
}
