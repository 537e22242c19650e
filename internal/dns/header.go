package dns

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed size of a DNS header in bytes.
const HeaderSize = 12

// Byte 2 of the header packs QR, Opcode, AA, TC and RD; byte 3 packs RA and
// RCODE. The Z/reserved bits are not modeled: they are written as zero and
// ignored on parse.
const (
	qrBit     byte = 0x80 // Byte 2, bit 7: query (0) or response (1)
	opcodeoff      = 3    // Byte 2, bits 6-3: opcode
	aaBit     byte = 0x04 // Byte 2, bit 2: authoritative answer
	tcBit     byte = 0x02 // Byte 2, bit 1: truncation
	rdBit     byte = 0x01 // Byte 2, bit 0: recursion desired
	raBit     byte = 0x80 // Byte 3, bit 7: recursion available
	rcodeMask byte = 0x0F // Byte 3, bits 3-0: response code
)

// Header represents the fixed 12-byte DNS message header
// (RFC 1035 Section 4.1.1):
//
//	                               1  1  1  1  1  1
//	 0  1  2  3  4  5  6  7  8  9  0  1  2  3  4  5
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|                      ID                       |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|QR|   Opcode  |AA|TC|RD|RA|   Z    |   RCODE   |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|                    QDCOUNT                    |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|                    ANCOUNT                    |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|                    NSCOUNT                    |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|                    ARCOUNT                    |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//
// After a successful message parse the section counts equal the number of
// entries actually present in the corresponding lists.
type Header struct {
	ID      uint16       // Transaction ID
	QR      bool         // Query/response flag
	Opcode  Opcode       // Operation code
	AA      bool         // Authoritative answer
	TC      bool         // Truncation
	RD      bool         // Recursion desired
	RA      bool         // Recursion available
	RCode   ResponseCode // Response code
	QDCount uint16       // Question count
	ANCount uint16       // Answer count
	NSCount uint16       // Authority (nameserver) count
	ARCount uint16       // Additional records count
}

// Write serializes the header to the first 12 bytes of dest, big-endian.
// Fails with ErrMarshal if dest has fewer than 12 bytes.
func (h Header) Write(dest []byte) error {
	if len(dest) < HeaderSize {
		return fmt.Errorf("%w: header requires at least %d bytes", ErrMarshal, HeaderSize)
	}

	binary.BigEndian.PutUint16(dest[0:2], h.ID)

	var b2 byte
	if h.QR {
		b2 |= qrBit
	}
	b2 |= byte(h.Opcode) << opcodeoff
	if h.AA {
		b2 |= aaBit
	}
	if h.TC {
		b2 |= tcBit
	}
	if h.RD {
		b2 |= rdBit
	}
	dest[2] = b2

	var b3 byte
	if h.RA {
		b3 |= raBit
	}
	b3 |= byte(h.RCode) & rcodeMask
	dest[3] = b3

	binary.BigEndian.PutUint16(dest[4:6], h.QDCount)
	binary.BigEndian.PutUint16(dest[6:8], h.ANCount)
	binary.BigEndian.PutUint16(dest[8:10], h.NSCount)
	binary.BigEndian.PutUint16(dest[10:12], h.ARCount)
	return nil
}

// ParseHeader parses a DNS header from the first 12 bytes of src. It is the
// exact inverse of Write. Fails with ErrParse if fewer than 12 bytes are
// supplied.
func ParseHeader(src []byte) (Header, error) {
	if len(src) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header requires %d bytes, have %d", ErrParse, HeaderSize, len(src))
	}
	return Header{
		ID:      binary.BigEndian.Uint16(src[0:2]),
		QR:      src[2]&qrBit != 0,
		Opcode:  Opcode(src[2] >> opcodeoff & 0x0F),
		AA:      src[2]&aaBit != 0,
		TC:      src[2]&tcBit != 0,
		RD:      src[2]&rdBit != 0,
		RA:      src[3]&raBit != 0,
		RCode:   ResponseCode(src[3] & rcodeMask),
		QDCount: binary.BigEndian.Uint16(src[4:6]),
		ANCount: binary.BigEndian.Uint16(src[6:8]),
		NSCount: binary.BigEndian.Uint16(src[8:10]),
		ARCount: binary.BigEndian.Uint16(src[10:12]),
	}, nil
}
