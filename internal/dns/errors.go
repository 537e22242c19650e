// Package dns implements a minimal DNS message codec: header, domain-name
// labels with message compression, questions, and resource records.
//
// Standards Compliance:
//
// This package implements the wire format from the following RFCs:
//
//   - RFC 1035: Domain Names - Implementation and Specification (core DNS protocol)
//   - RFC 1034: Domain Names - Concepts and Facilities (DNS concepts)
//
// Names are modeled as ordered label sequences in which a compression pointer
// may appear only as the final element. Parsing is two-pass: a structural pass
// over each section, then a resolution pass that replaces pointers with the
// literal labels they reference, bounded to defend against pointer cycles.
//
// Error Handling:
//
// All errors wrap one of the sentinel errors below using
// fmt.Errorf("...: %w", err), so callers can classify failures with errors.Is
// while keeping operational context.
package dns

import "errors"

var (
	// ErrParse indicates malformed wire data: insufficient bytes, a missing
	// name terminator, or a cyclic/over-deep compression pointer chain.
	ErrParse = errors.New("dns parse error")

	// ErrMarshal indicates insufficient destination space while serializing.
	ErrMarshal = errors.New("dns marshal error")

	// ErrDNS is the sentinel for domain/usage-level errors that are neither
	// parse nor marshal failures (for example a label longer than 63 octets).
	ErrDNS = errors.New("dns error")
)
