package dns

import (
	"fmt"
	"math/rand"

	"github.com/ckousik/rootwalk/internal/helpers"
)

// MaxMessageSize is the working buffer size for messages in either
// direction. A response larger than this is reported as a parse error by the
// transport rather than silently truncated.
const MaxMessageSize = 4096

// Message represents a complete DNS message (RFC 1035 Section 4.1): the
// header plus the question, answer, authority and additional sections.
//
// A parsed Message is immutable except for the in-place label-pointer
// resolution pass, which ParseMessage applies to every name field exactly
// once before returning. After a successful parse the section lists have
// exactly the lengths the header counts declare.
type Message struct {
	Header      Header
	Questions   []Question
	Answers     []ResourceRecord
	Authorities []ResourceRecord
	Additionals []ResourceRecord
}

// ParseMessage parses a wire-format message from b: the header, then exactly
// QDCount questions, ANCount answer records, NSCount authority records and
// ARCount additional records, consumed sequentially from the running offset.
//
// After structural parsing, a second pass resolves every name field
// (question names and each record's owner name) against the entire original
// buffer, since compression pointers may reference any earlier offset in the
// message. Returns the number of bytes consumed.
func ParseMessage(b []byte) (int, Message, error) {
	hdr, err := ParseHeader(b)
	if err != nil {
		return 0, Message{}, err
	}
	offset := HeaderSize

	m := Message{Header: hdr}
	m.Questions = make([]Question, 0, hdr.QDCount)
	for i := 0; i < int(hdr.QDCount); i++ {
		read, q, err := ParseQuestion(b[offset:])
		if err != nil {
			return 0, Message{}, fmt.Errorf("question at offset %d: %w", offset, err)
		}
		offset += read
		m.Questions = append(m.Questions, q)
	}

	m.Answers, offset, err = parseRecordSection(b, offset, hdr.ANCount, "answer")
	if err != nil {
		return 0, Message{}, err
	}
	m.Authorities, offset, err = parseRecordSection(b, offset, hdr.NSCount, "authority")
	if err != nil {
		return 0, Message{}, err
	}
	m.Additionals, offset, err = parseRecordSection(b, offset, hdr.ARCount, "additional")
	if err != nil {
		return 0, Message{}, err
	}

	if err := m.resolveNames(b); err != nil {
		return 0, Message{}, err
	}
	return offset, m, nil
}

// parseRecordSection parses count resource records starting at offset.
func parseRecordSection(b []byte, offset int, count uint16, section string) ([]ResourceRecord, int, error) {
	records := make([]ResourceRecord, 0, count)
	for i := 0; i < int(count); i++ {
		read, r, err := ParseRecord(b[offset:])
		if err != nil {
			return nil, 0, fmt.Errorf("%s record at offset %d: %w", section, offset, err)
		}
		offset += read
		records = append(records, r)
	}
	return records, offset, nil
}

// resolveNames applies the pointer-resolution pass to every name field,
// against the full original message buffer.
func (m *Message) resolveNames(b []byte) error {
	for i := range m.Questions {
		if _, err := ResolveLabels(b, &m.Questions[i].Name); err != nil {
			return err
		}
	}
	for _, section := range [][]ResourceRecord{m.Answers, m.Authorities, m.Additionals} {
		for i := range section {
			if _, err := ResolveLabels(b, &section[i].Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// Write serializes the message into dest and returns the number of bytes
// written: the header followed by each question in order. Answer, authority
// and additional records are never serialized, since this module only ever
// sends queries on the wire.
func (m Message) Write(dest []byte) (int, error) {
	if err := m.Header.Write(dest); err != nil {
		return 0, err
	}
	offset := HeaderSize
	for _, q := range m.Questions {
		written, err := q.Write(dest[offset:])
		if err != nil {
			return 0, err
		}
		offset += written
	}
	return offset, nil
}

// NewQuery builds a single-question query message for the given domain with
// a random 16-bit transaction ID, QR clear, a standard-query opcode, and the
// RD flag set per recursionDesired.
func NewQuery(domain string, qtype RecordType, qclass RecordClass, recursionDesired bool) (Message, error) {
	name, err := DomainToLabels(domain)
	if err != nil {
		return Message{}, err
	}

	questions := []Question{{Name: name, Type: qtype, Class: qclass}}
	return Message{
		Header: Header{
			ID:      uint16(rand.Uint32()),
			Opcode:  OpcodeStandardQuery,
			RD:      recursionDesired,
			QDCount: helpers.ClampIntToUint16(len(questions)),
		},
		Questions: questions,
	}, nil
}
