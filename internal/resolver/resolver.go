// Package resolver implements an iterative DNS resolver that walks the
// delegation hierarchy from a well-known root server down to an
// authoritative answer, without a system resolver or a forwarding recursive
// server in between.
//
// Resolution Strategy:
//
// Each hop sends a non-recursive A/IN query to the current server. A
// response either answers directly, refers to the name servers of a child
// zone (authority NS records, usually accompanied by glue A records in the
// additional section), or terminates the branch with an error code.
// Referrals are followed depth-first, strictly sequentially, first success
// wins; delegation depth is bounded so adversarial or looping zones cannot
// recurse without limit.
//
// Error Policy:
//
// The default policy (PolicyStrict) treats any I/O or parse failure during
// an exchange as fatal for the whole resolution. PolicyLenient instead
// abandons only the branch behind the failing server, so sibling delegation
// candidates are still attempted.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"time"

	"github.com/google/uuid"

	"github.com/ckousik/rootwalk/internal/dns"
	"github.com/ckousik/rootwalk/internal/pool"
)

// DefaultMaxDepth bounds recursive delegation chasing. Real DNS delegation
// rarely exceeds a few hops for well-formed zones, so the ceiling is
// deliberately conservative.
const DefaultMaxDepth = 3

// RootServer is the well-known root name server every resolution starts
// from (a.root-servers.net).
var RootServer = netip.AddrPortFrom(netip.AddrFrom4([4]byte{198, 41, 0, 4}), 53)

// ErrNotFound reports that a resolution exhausted every candidate without
// producing an address. NXDOMAIN, delegation dead ends and the depth bound
// all collapse into this outcome.
var ErrNotFound = errors.New("domain not found")

// ErrorPolicy selects how a failed query/response exchange is treated.
type ErrorPolicy int

const (
	// PolicyStrict aborts the entire resolution on the first I/O or parse
	// failure.
	PolicyStrict ErrorPolicy = iota
	// PolicyLenient abandons only the branch behind the failing server and
	// lets sibling delegation candidates proceed.
	PolicyLenient
)

// Options configures a Resolver. Zero values select the defaults: a
// UDPExchanger with DefaultTimeout, the well-known root, DefaultMaxDepth
// and PolicyStrict.
type Options struct {
	Exchanger Exchanger
	Logger    *slog.Logger
	Root      netip.AddrPort
	MaxDepth  int
	Policy    ErrorPolicy
	Stats     *Stats
}

// Resolver drives the iterative delegation walk. It holds no mutable state
// across resolutions: every Resolve call owns a fresh glue map and call
// stack, so a single Resolver is safe for concurrent use.
type Resolver struct {
	exchanger Exchanger
	logger    *slog.Logger
	root      netip.AddrPort
	maxDepth  int
	policy    ErrorPolicy
	stats     *Stats
	bufs      *pool.Pool[[]byte] // Recycles outbound query buffers
}

// New creates a Resolver from the given options.
func New(opts Options) *Resolver {
	if opts.Exchanger == nil {
		opts.Exchanger = &UDPExchanger{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if !opts.Root.IsValid() {
		opts.Root = RootServer
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Stats == nil {
		opts.Stats = NewStats()
	}
	return &Resolver{
		exchanger: opts.Exchanger,
		logger:    opts.Logger,
		root:      opts.Root,
		maxDepth:  opts.MaxDepth,
		policy:    opts.Policy,
		stats:     opts.Stats,
		bufs:      pool.NewBytes(dns.MaxMessageSize),
	}
}

// Stats returns the resolver's statistics collector.
func (r *Resolver) Stats() *Stats {
	return r.stats
}

// Lookup is the outcome of one top-level resolution.
type Lookup struct {
	TraceID  string        // Correlates log lines and journal entries
	Domain   string        // The name that was resolved
	Addr     netip.Addr    // The resolved IPv4 address; only valid if Found
	Found    bool          // False when every candidate was exhausted
	Queries  int           // Delegation queries issued for this lookup
	Duration time.Duration // Wall-clock time of the whole walk
}

// walk is the per-resolution state threaded through the recursion: the
// glue map and query counter are owned exclusively by one top-level call
// and never shared between resolutions.
type walk struct {
	glue    map[string]netip.Addr // NS domain name -> glue address
	log     *slog.Logger
	queries int
}

// Resolve walks the delegation hierarchy for domain starting at the root.
//
// Found=false with a nil error means every candidate was exhausted
// (including NXDOMAIN and the depth bound). A non-nil error is only
// returned for I/O or parse failures under PolicyStrict, or when the
// context is cancelled.
func (r *Resolver) Resolve(ctx context.Context, domain string) (Lookup, error) {
	start := time.Now()
	traceID := uuid.NewString()[:8]
	w := &walk{
		glue: make(map[string]netip.Addr),
		log:  r.logger.With("trace_id", traceID, "domain", domain),
	}

	addr, err := r.resolveAt(ctx, w, 0, domain, r.root)

	result := Lookup{
		TraceID:  traceID,
		Domain:   domain,
		Addr:     addr,
		Found:    err == nil,
		Queries:  w.queries,
		Duration: time.Since(start),
	}
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	r.stats.recordLookup(result.Found, err, int64(result.Duration))
	if err != nil {
		w.log.Error("resolution failed", "error", err, "queries", result.Queries)
		return result, err
	}
	if result.Found {
		w.log.Info("resolved", "addr", addr.String(), "queries", result.Queries, "duration_ms", result.Duration.Milliseconds())
	} else {
		w.log.Info("not found", "queries", result.Queries, "duration_ms", result.Duration.Milliseconds())
	}
	return result, nil
}

// resolveAt performs one hop of the walk: query server for domain, then
// either return the answer, follow the referral, or give up on this branch.
func (r *Resolver) resolveAt(ctx context.Context, w *walk, depth int, domain string, server netip.AddrPort) (netip.Addr, error) {
	if depth > r.maxDepth {
		w.log.Debug("delegation depth exceeded", "depth", depth)
		return netip.Addr{}, ErrNotFound
	}
	if ctx.Err() != nil {
		return netip.Addr{}, ctx.Err()
	}

	msg, raw, err := r.query(ctx, w, domain, server)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return netip.Addr{}, err
		}
		if r.policy == PolicyLenient {
			w.log.Warn("exchange failed, abandoning branch", "server", server.String(), "error", err)
			return netip.Addr{}, ErrNotFound
		}
		return netip.Addr{}, err
	}

	if msg.Header.RCode != dns.RCodeNoError {
		w.log.Info("server returned error code", "server", server.String(), "rcode", msg.Header.RCode.String())
		return netip.Addr{}, ErrNotFound
	}

	// Direct answer: first A record wins. AAAA and other types are skipped.
	for _, an := range msg.Answers {
		if an.Type != dns.TypeA || len(an.RData) < 4 {
			continue
		}
		return netip.AddrFrom4([4]byte(an.RData[:4])), nil
	}

	// Glue: additional-section A/IN records map a name server's domain to
	// its address, saving a separate lookup.
	for _, ad := range msg.Additionals {
		if ad.Type != dns.TypeA || ad.Class != dns.ClassIN || len(ad.RData) < 4 {
			continue
		}
		w.glue[ad.Domain()] = netip.AddrFrom4([4]byte(ad.RData[:4]))
	}

	// Referral: authority-section NS records name the servers delegated for
	// the zone. Candidates are tried in section order, first success wins.
	for _, ns := range msg.Authorities {
		if ns.Type != dns.TypeNS {
			continue
		}
		nsDomain, err := r.nameServerDomain(ns, raw)
		if err != nil {
			if r.policy == PolicyLenient {
				w.log.Warn("bad NS rdata, skipping candidate", "error", err)
				continue
			}
			return netip.Addr{}, err
		}
		if nsDomain == domain {
			continue
		}
		w.log.Debug("following referral", "ns", nsDomain, "depth", depth)
		r.stats.recordReferral()

		if addr, ok := w.glue[nsDomain]; ok {
			result, err := r.resolveAt(ctx, w, depth+1, domain, netip.AddrPortFrom(addr, 53))
			if err == nil {
				return result, nil
			}
			if !errors.Is(err, ErrNotFound) {
				return netip.Addr{}, err
			}
		}

		// No usable glue: resolve the name server's own address from the
		// root, then retry the original target against it.
		nsAddr, err := r.resolveAt(ctx, w, depth+1, nsDomain, r.root)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				return netip.Addr{}, err
			}
			continue
		}
		result, err := r.resolveAt(ctx, w, depth+1, domain, netip.AddrPortFrom(nsAddr, 53))
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return netip.Addr{}, err
		}
	}

	return netip.Addr{}, ErrNotFound
}

// query builds, sends and parses one non-recursive A/IN query. It returns
// the parsed message along with the raw response bytes, which the caller
// needs to resolve compressed names inside NS rdata.
func (r *Resolver) query(ctx context.Context, w *walk, domain string, server netip.AddrPort) (dns.Message, []byte, error) {
	w.log.Debug("querying", "server", server.String(), "name", domain)
	w.queries++
	r.stats.recordQuery()

	q, err := dns.NewQuery(domain, dns.TypeA, dns.ClassIN, false)
	if err != nil {
		return dns.Message{}, nil, err
	}
	buf := r.bufs.Get()
	defer r.bufs.Put(buf)
	n, err := q.Write(buf)
	if err != nil {
		return dns.Message{}, nil, err
	}

	resp, err := r.exchanger.Exchange(ctx, server, buf[:n])
	if err != nil {
		return dns.Message{}, nil, fmt.Errorf("exchange with %s: %w", server, err)
	}
	_, msg, err := dns.ParseMessage(resp)
	if err != nil {
		return dns.Message{}, nil, fmt.Errorf("response from %s: %w", server, err)
	}
	return msg, resp, nil
}

// nameServerDomain decodes the rdata of an NS record, which is itself a
// label sequence that may point back into the enclosing message.
func (r *Resolver) nameServerDomain(ns dns.ResourceRecord, raw []byte) (string, error) {
	_, labels, err := dns.ParseLabels(ns.RData)
	if err != nil {
		return "", err
	}
	return dns.ResolveLabels(raw, &labels)
}
