package resolver

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ckousik/rootwalk/internal/dns"
)

var testRoot = netip.MustParseAddrPort("192.0.2.90:53")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeExchanger answers queries from a script keyed by "server domain". A key
// present in errs fails the exchange instead.
type fakeExchanger struct {
	t         *testing.T
	responses map[string][]byte
	errs      map[string]error
	calls     []string
}

func (f *fakeExchanger) Exchange(_ context.Context, server netip.AddrPort, query []byte) ([]byte, error) {
	_, msg, err := dns.ParseMessage(query)
	require.NoError(f.t, err, "resolver sent an unparseable query")
	require.Len(f.t, msg.Questions, 1)
	require.False(f.t, msg.Header.RD, "delegation queries must not request recursion")

	key := server.String() + " " + msg.Questions[0].Domain()
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	resp, ok := f.responses[key]
	if !ok {
		f.t.Fatalf("unexpected query: %s", key)
	}
	return resp, nil
}

func wireName(t *testing.T, domain string) []byte {
	t.Helper()
	labels, err := dns.DomainToLabels(domain)
	require.NoError(t, err)
	buf := make([]byte, 256)
	n, err := dns.WriteLabels(labels, buf)
	require.NoError(t, err)
	return buf[:n]
}

func wireRecord(t *testing.T, domain string, rtype dns.RecordType, rdata []byte) []byte {
	t.Helper()
	b := wireName(t, domain)
	b = binary.BigEndian.AppendUint16(b, uint16(rtype))
	b = binary.BigEndian.AppendUint16(b, uint16(dns.ClassIN))
	b = binary.BigEndian.AppendUint32(b, 300)
	b = binary.BigEndian.AppendUint16(b, uint16(len(rdata)))
	return append(b, rdata...)
}

func aRecord(t *testing.T, domain, addr string) []byte {
	return wireRecord(t, domain, dns.TypeA, netip.MustParseAddr(addr).AsSlice())
}

func nsRecord(t *testing.T, zone, nsDomain string) []byte {
	return wireRecord(t, zone, dns.TypeNS, wireName(t, nsDomain))
}

func response(t *testing.T, rcode dns.ResponseCode, answers, authorities, additionals [][]byte) []byte {
	t.Helper()
	hdr := dns.Header{
		QR:      true,
		RCode:   rcode,
		ANCount: uint16(len(answers)),
		NSCount: uint16(len(authorities)),
		ARCount: uint16(len(additionals)),
	}
	buf := make([]byte, dns.HeaderSize)
	require.NoError(t, hdr.Write(buf))
	for _, section := range [][][]byte{answers, authorities, additionals} {
		for _, rec := range section {
			buf = append(buf, rec...)
		}
	}
	return buf
}

func newTestResolver(t *testing.T, fake *fakeExchanger, policy ErrorPolicy) *Resolver {
	t.Helper()
	return New(Options{
		Exchanger: fake,
		Logger:    discardLogger(),
		Root:      testRoot,
		Policy:    policy,
	})
}

func TestResolve_DirectAnswer(t *testing.T) {
	fake := &fakeExchanger{t: t, responses: map[string][]byte{
		"192.0.2.90:53 dns.google.com": response(t, dns.RCodeNoError,
			[][]byte{aRecord(t, "dns.google.com", "8.8.8.8")}, nil, nil),
	}}
	r := newTestResolver(t, fake, PolicyStrict)

	lookup, err := r.Resolve(context.Background(), "dns.google.com")
	require.NoError(t, err)
	assert.True(t, lookup.Found)
	assert.Equal(t, "8.8.8.8", lookup.Addr.String())
	assert.Equal(t, "dns.google.com", lookup.Domain)
	assert.Equal(t, 1, lookup.Queries)
	assert.Len(t, lookup.TraceID, 8)
}

func TestResolve_SkipsNonARecordAnswers(t *testing.T) {
	fake := &fakeExchanger{t: t, responses: map[string][]byte{
		"192.0.2.90:53 dns.google.com": response(t, dns.RCodeNoError,
			[][]byte{
				wireRecord(t, "dns.google.com", dns.TypeAAAA, make([]byte, 16)),
				aRecord(t, "dns.google.com", "8.8.4.4"),
			}, nil, nil),
	}}
	r := newTestResolver(t, fake, PolicyStrict)

	lookup, err := r.Resolve(context.Background(), "dns.google.com")
	require.NoError(t, err)
	assert.True(t, lookup.Found)
	assert.Equal(t, "8.8.4.4", lookup.Addr.String())
}

func TestResolve_ReferralWithGlue(t *testing.T) {
	fake := &fakeExchanger{t: t, responses: map[string][]byte{
		"192.0.2.90:53 dns.google.com": response(t, dns.RCodeNoError,
			nil,
			[][]byte{nsRecord(t, "com", "ns1.nic.com")},
			[][]byte{aRecord(t, "ns1.nic.com", "192.0.2.1")}),
		"192.0.2.1:53 dns.google.com": response(t, dns.RCodeNoError,
			[][]byte{aRecord(t, "dns.google.com", "8.8.8.8")}, nil, nil),
	}}
	r := newTestResolver(t, fake, PolicyStrict)

	lookup, err := r.Resolve(context.Background(), "dns.google.com")
	require.NoError(t, err)
	assert.True(t, lookup.Found)
	assert.Equal(t, "8.8.8.8", lookup.Addr.String())
	assert.Equal(t, 2, lookup.Queries)

	snap := r.Stats().Snapshot()
	assert.Equal(t, uint64(1), snap.Referrals)
	assert.Equal(t, uint64(2), snap.QueriesSent)
	assert.Equal(t, uint64(1), snap.LookupsFound)
}

func TestResolve_ReferralWithoutGlue(t *testing.T) {
	fake := &fakeExchanger{t: t, responses: map[string][]byte{
		// Referral names a server outside the zone, with no glue.
		"192.0.2.90:53 dns.google.com": response(t, dns.RCodeNoError,
			nil,
			[][]byte{nsRecord(t, "com", "ns1.example.net")},
			nil),
		// The name server's own address resolves from the root.
		"192.0.2.90:53 ns1.example.net": response(t, dns.RCodeNoError,
			[][]byte{aRecord(t, "ns1.example.net", "192.0.2.53")}, nil, nil),
		// The original target retried against the freshly resolved server.
		"192.0.2.53:53 dns.google.com": response(t, dns.RCodeNoError,
			[][]byte{aRecord(t, "dns.google.com", "8.8.8.8")}, nil, nil),
	}}
	r := newTestResolver(t, fake, PolicyStrict)

	lookup, err := r.Resolve(context.Background(), "dns.google.com")
	require.NoError(t, err)
	assert.True(t, lookup.Found)
	assert.Equal(t, "8.8.8.8", lookup.Addr.String())
	assert.Equal(t, 3, lookup.Queries)
	assert.Equal(t, []string{
		"192.0.2.90:53 dns.google.com",
		"192.0.2.90:53 ns1.example.net",
		"192.0.2.53:53 dns.google.com",
	}, fake.calls)
}

func TestResolve_CompressedNSRData(t *testing.T) {
	// One referral response built by hand so the NS rdata ends in a pointer
	// into the message: "ns1" + pointer to "nic.com" inside the authority
	// owner name.
	hdr := dns.Header{QR: true, NSCount: 1, ARCount: 1}
	buf := make([]byte, dns.HeaderSize)
	require.NoError(t, hdr.Write(buf))

	// Authority owner name "nic.com" lands at offset 12.
	owner := wireName(t, "nic.com")
	rdata := []byte{3, 'n', 's', '1', 0xC0, 0x0C}
	buf = append(buf, owner...)
	buf = binary.BigEndian.AppendUint16(buf, uint16(dns.TypeNS))
	buf = binary.BigEndian.AppendUint16(buf, uint16(dns.ClassIN))
	buf = binary.BigEndian.AppendUint32(buf, 300)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(rdata)))
	buf = append(buf, rdata...)
	buf = append(buf, aRecord(t, "ns1.nic.com", "192.0.2.1")...)

	fake := &fakeExchanger{t: t, responses: map[string][]byte{
		"192.0.2.90:53 dns.google.com": buf,
		"192.0.2.1:53 dns.google.com": response(t, dns.RCodeNoError,
			[][]byte{aRecord(t, "dns.google.com", "8.8.8.8")}, nil, nil),
	}}
	r := newTestResolver(t, fake, PolicyStrict)

	lookup, err := r.Resolve(context.Background(), "dns.google.com")
	require.NoError(t, err)
	assert.True(t, lookup.Found)
	assert.Equal(t, 2, lookup.Queries)
}

func TestResolve_NXDomain(t *testing.T) {
	fake := &fakeExchanger{t: t, responses: map[string][]byte{
		"192.0.2.90:53 nosuch.invalid": response(t, dns.RCodeNXDomain, nil, nil, nil),
	}}
	r := newTestResolver(t, fake, PolicyStrict)

	lookup, err := r.Resolve(context.Background(), "nosuch.invalid")
	require.NoError(t, err)
	assert.False(t, lookup.Found)
	assert.Equal(t, 1, lookup.Queries)

	snap := r.Stats().Snapshot()
	assert.Equal(t, uint64(1), snap.LookupsMissed)
	assert.Equal(t, uint64(0), snap.LookupsFailed)
}

func TestResolve_DepthBound(t *testing.T) {
	// Every server keeps referring to the same delegated name server, so
	// only the depth ceiling terminates the walk.
	loop := response(t, dns.RCodeNoError,
		nil,
		[][]byte{nsRecord(t, "test", "ns.loop.test")},
		[][]byte{aRecord(t, "ns.loop.test", "192.0.2.1")})
	fake := &fakeExchanger{t: t, responses: map[string][]byte{
		"192.0.2.90:53 target.loop.test": loop,
		"192.0.2.1:53 target.loop.test":  loop,
		"192.0.2.90:53 ns.loop.test":     response(t, dns.RCodeNXDomain, nil, nil, nil),
	}}
	r := newTestResolver(t, fake, PolicyStrict)

	lookup, err := r.Resolve(context.Background(), "target.loop.test")
	require.NoError(t, err)
	assert.False(t, lookup.Found)
	assert.Greater(t, lookup.Queries, 1)
}

func TestResolve_SkipsSelfReferral(t *testing.T) {
	// A server claiming the queried name is its own name server must not
	// trigger a lookup loop for the same name.
	fake := &fakeExchanger{t: t, responses: map[string][]byte{
		"192.0.2.90:53 ns.example.com": response(t, dns.RCodeNoError,
			nil,
			[][]byte{nsRecord(t, "example.com", "ns.example.com")},
			nil),
	}}
	r := newTestResolver(t, fake, PolicyStrict)

	lookup, err := r.Resolve(context.Background(), "ns.example.com")
	require.NoError(t, err)
	assert.False(t, lookup.Found)
	assert.Equal(t, 1, lookup.Queries)
}

func TestResolve_StrictPolicyAbortsOnExchangeFailure(t *testing.T) {
	fake := &fakeExchanger{
		t: t,
		responses: map[string][]byte{
			"192.0.2.90:53 dns.google.com": response(t, dns.RCodeNoError,
				nil,
				[][]byte{nsRecord(t, "com", "ns1.nic.com")},
				[][]byte{aRecord(t, "ns1.nic.com", "192.0.2.1")}),
		},
		errs: map[string]error{
			"192.0.2.1:53 dns.google.com": errors.New("network unreachable"),
		},
	}
	r := newTestResolver(t, fake, PolicyStrict)

	lookup, err := r.Resolve(context.Background(), "dns.google.com")
	require.Error(t, err)
	assert.False(t, lookup.Found)
	assert.Equal(t, uint64(1), r.Stats().Snapshot().LookupsFailed)
}

func TestResolve_LenientPolicySkipsFailingServer(t *testing.T) {
	fake := &fakeExchanger{
		t: t,
		responses: map[string][]byte{
			"192.0.2.90:53 dns.google.com": response(t, dns.RCodeNoError,
				nil,
				[][]byte{
					nsRecord(t, "com", "ns1.nic.com"),
					nsRecord(t, "com", "ns2.nic.com"),
				},
				[][]byte{
					aRecord(t, "ns1.nic.com", "192.0.2.1"),
					aRecord(t, "ns2.nic.com", "192.0.2.2"),
				}),
			// The failing candidate's own address also dead-ends at the root.
			"192.0.2.90:53 ns1.nic.com": response(t, dns.RCodeNXDomain, nil, nil, nil),
			"192.0.2.2:53 dns.google.com": response(t, dns.RCodeNoError,
				[][]byte{aRecord(t, "dns.google.com", "8.8.8.8")}, nil, nil),
		},
		errs: map[string]error{
			"192.0.2.1:53 dns.google.com": errors.New("network unreachable"),
		},
	}
	r := newTestResolver(t, fake, PolicyLenient)

	lookup, err := r.Resolve(context.Background(), "dns.google.com")
	require.NoError(t, err)
	assert.True(t, lookup.Found)
	assert.Equal(t, "8.8.8.8", lookup.Addr.String())
}

func TestResolve_MalformedResponse(t *testing.T) {
	fake := &fakeExchanger{t: t, responses: map[string][]byte{
		"192.0.2.90:53 dns.google.com": {0xDE, 0xAD},
	}}
	r := newTestResolver(t, fake, PolicyStrict)

	_, err := r.Resolve(context.Background(), "dns.google.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, dns.ErrParse)
}

func TestResolve_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := &fakeExchanger{t: t}
	r := newTestResolver(t, fake, PolicyLenient)

	_, err := r.Resolve(ctx, "dns.google.com")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fake.calls)
}
