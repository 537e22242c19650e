package dns

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Label is one element of a domain name: either a literal name segment of at
// most 63 octets, or a compression pointer standing in for a name suffix
// stored earlier in the message (RFC 1035 Section 4.1.4).
//
// A domain name is an ordered sequence of labels. At most one pointer may
// appear in a sequence, and only as the final element: a pointer always
// terminates the name.
type Label struct {
	Text    string // Literal segment; empty for pointers
	Offset  int    // 14-bit offset into the message; only valid for pointers
	Pointer bool   // True if this label is a compression pointer
}

// TextLabel returns a literal label for the given segment.
func TextLabel(s string) Label {
	return Label{Text: s}
}

// PointerLabel returns a compression pointer to the given message offset.
func PointerLabel(offset int) Label {
	return Label{Offset: offset, Pointer: true}
}

// maxPointerFollows bounds the number of pointer-follow iterations during
// label resolution. Exceeding it signals a compression cycle: a well-formed
// message never chains pointers this deep, while a malicious one can point
// into itself indefinitely.
const maxPointerFollows = 10

// maxLabelLength is the largest literal label the wire format can express,
// since the two high bits of the length octet are claimed by pointers.
const maxLabelLength = 63

// ParseLabels reads a label sequence starting at offset 0 of b.
//
// Each label octet is interpreted as follows:
//   - top two bits 11: the low 6 bits plus the next octet form a 14-bit
//     offset; a pointer label is emitted and the sequence ends
//   - zero: root terminator, consumed but not emitted
//   - otherwise: a length 0-63 followed by that many octets forming one
//     literal label
//
// Literal bytes are decoded permissively: invalid UTF-8 sequences are
// substituted, never rejected. Returns the number of bytes consumed and the
// parsed sequence, or ErrParse when the buffer runs out before a terminator
// or pointer is found.
func ParseLabels(b []byte) (int, []Label, error) {
	labels := make([]Label, 0, 4)
	idx := 0
	for idx < len(b) {
		// Compression pointer: 11xxxxxx xxxxxxxx
		if b[idx]&0xC0 == 0xC0 {
			if idx+1 >= len(b) {
				return 0, nil, fmt.Errorf("%w: need %d bytes for label pointer, have %d", ErrParse, idx+2, len(b))
			}
			offset := binary.BigEndian.Uint16([]byte{b[idx] & 0x3F, b[idx+1]})
			labels = append(labels, PointerLabel(int(offset)))
			return idx + 2, labels, nil
		}

		// Zero octet terminates the name (root label).
		if b[idx] == 0 {
			return idx + 1, labels, nil
		}

		count := int(b[idx])
		if idx+count >= len(b) {
			return 0, nil, fmt.Errorf("%w: need %d bytes for label, have %d", ErrParse, idx+count+1, len(b))
		}
		labels = append(labels, TextLabel(strings.ToValidUTF8(string(b[idx+1:idx+count+1]), "�")))
		idx += count + 1
	}
	return 0, nil, fmt.Errorf("%w: label sequence missing zero octet or pointer", ErrParse)
}

// ResolveLabels replaces compression pointers in labels with the literal
// labels they reference, resolving against the entire original message
// buffer. It mutates the sequence in place and returns the textual domain
// name formed by joining all literal labels with dots.
//
// Resolution repeats while the final label is a pointer: the pointer is
// removed, the sequence at the referenced offset is parsed, and the result
// is appended (which may itself end in another pointer). The number of
// follow iterations is bounded by maxPointerFollows; exceeding it fails with
// ErrParse, the primary defense against messages that point into themselves.
func ResolveLabels(msg []byte, labels *[]Label) (string, error) {
	iterations := 0
	for len(*labels) > 0 {
		if iterations == maxPointerFollows {
			return "", fmt.Errorf("%w: labels unresolved after %d pointer follows, possible compression cycle", ErrParse, maxPointerFollows)
		}
		last := (*labels)[len(*labels)-1]
		if !last.Pointer {
			break
		}
		*labels = (*labels)[:len(*labels)-1]

		if last.Offset >= len(msg) {
			return "", fmt.Errorf("%w: label pointer offset %d beyond message of %d bytes", ErrParse, last.Offset, len(msg))
		}
		_, next, err := ParseLabels(msg[last.Offset:])
		if err != nil {
			return "", err
		}
		*labels = append(*labels, next...)
		iterations++
	}
	return joinLabels(*labels), nil
}

// DomainToLabels splits a textual domain name on dots into literal labels.
// It never produces a pointer. Fails with ErrDNS if any segment exceeds the
// 63-octet label limit.
func DomainToLabels(domain string) ([]Label, error) {
	parts := strings.Split(domain, ".")
	labels := make([]Label, 0, len(parts))
	for _, part := range parts {
		if len(part) > maxLabelLength {
			return nil, fmt.Errorf("%w: label cannot have more than %d octets", ErrDNS, maxLabelLength)
		}
		labels = append(labels, TextLabel(part))
	}
	return labels, nil
}

// WriteLabels serializes a label sequence into dest and returns the number of
// bytes written. Literal labels become length-prefixed octet runs. A pointer
// label is written as a 2-byte 11-prefixed offset and terminates the sequence
// with no trailing zero octet; otherwise a single zero octet terminates it.
// Fails with ErrMarshal if dest is too small at any write step.
func WriteLabels(labels []Label, dest []byte) (int, error) {
	if len(labels) == 0 {
		return 0, nil
	}

	idx := 0
	for _, label := range labels {
		if idx >= len(dest) {
			return 0, fmt.Errorf("%w: not enough space in destination to write labels", ErrMarshal)
		}
		if label.Pointer {
			dest[idx] = 0xC0 | byte(label.Offset>>8)&0x3F
			idx++
			if idx >= len(dest) {
				return 0, fmt.Errorf("%w: not enough space in destination to write labels", ErrMarshal)
			}
			dest[idx] = byte(label.Offset)
			idx++
			// A pointer ends the sequence; no terminating zero octet.
			return idx, nil
		}

		dest[idx] = byte(len(label.Text))
		idx++
		for i := 0; i < len(label.Text); i++ {
			if idx >= len(dest) {
				return 0, fmt.Errorf("%w: not enough space in destination to write labels", ErrMarshal)
			}
			dest[idx] = label.Text[i]
			idx++
		}
	}

	if idx >= len(dest) {
		return 0, fmt.Errorf("%w: not enough space in destination to write labels", ErrMarshal)
	}
	dest[idx] = 0
	return idx + 1, nil
}

// joinLabels concatenates the literal labels of a sequence with dots.
// Pointer labels carry no text and are skipped.
func joinLabels(labels []Label) string {
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		if l.Pointer {
			continue
		}
		parts = append(parts, l.Text)
	}
	return strings.Join(parts, ".")
}
