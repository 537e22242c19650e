package dns

// Opcode is the 4-bit operation code in the DNS header (RFC 1035 Section 4.1.1).
// Values above OpcodeStatus are reserved and pass through unchanged.
type Opcode uint8

const (
	OpcodeStandardQuery Opcode = 0 // QUERY: standard query
	OpcodeInverseQuery  Opcode = 1 // IQUERY: inverse query (obsolete)
	OpcodeStatus        Opcode = 2 // STATUS: server status request
)

// ResponseCode is the 4-bit RCODE in the DNS header (RFC 1035 Section 4.1.1).
// Values above RCodeRefused are reserved and pass through unchanged.
type ResponseCode uint8

const (
	RCodeNoError  ResponseCode = 0 // No error
	RCodeFormErr  ResponseCode = 1 // Format error: query malformed
	RCodeServFail ResponseCode = 2 // Server failure: internal error
	RCodeNXDomain ResponseCode = 3 // Name error: domain does not exist
	RCodeNotImp   ResponseCode = 4 // Not implemented: unsupported query type
	RCodeRefused  ResponseCode = 5 // Query refused by policy
)

// String returns a short mnemonic for logging.
func (rc ResponseCode) String() string {
	switch rc {
	case RCodeNoError:
		return "NOERROR"
	case RCodeFormErr:
		return "FORMERR"
	case RCodeServFail:
		return "SERVFAIL"
	case RCodeNXDomain:
		return "NXDOMAIN"
	case RCodeNotImp:
		return "NOTIMP"
	case RCodeRefused:
		return "REFUSED"
	default:
		return "RESERVED"
	}
}

// RecordType represents DNS resource record types (RFC 1035 Section 3.2.2).
// Only A and NS rdata are ever interpreted by this module; every other type
// passes through as opaque bytes.
type RecordType uint16

const (
	TypeA     RecordType = 1  // IPv4 address
	TypeNS    RecordType = 2  // Authoritative name server
	TypeCNAME RecordType = 5  // Canonical name (alias)
	TypeSOA   RecordType = 6  // Start of Authority
	TypeAAAA  RecordType = 28 // IPv6 address (RFC 3596), never interpreted here
)

// RecordClass represents DNS resource record classes (RFC 1035).
type RecordClass uint16

const (
	ClassIN RecordClass = 1 // Internet class
)
