// Command rootwalk resolves a domain name iteratively, walking the DNS
// delegation hierarchy from a root server down to an authoritative answer.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/netip"
	"os"
	"strings"

	"github.com/ckousik/rootwalk/internal/logging"
	"github.com/ckousik/rootwalk/internal/resolver"
)

const defaultDomain = "dns.google.com"

func main() {
	var (
		root    = flag.String("root", resolver.RootServer.String(), "Root server HOST:PORT to start the walk from")
		timeout = flag.Duration("timeout", resolver.DefaultTimeout, "Per-exchange timeout")
		depth   = flag.Int("depth", resolver.DefaultMaxDepth, "Maximum delegation depth")
		lenient = flag.Bool("lenient", false, "Skip failing servers instead of aborting the resolution")
		debug   = flag.Bool("debug", false, "Enable debug logging")
		jsonLog = flag.Bool("json-logs", false, "Enable JSON structured logging")
	)
	flag.Parse()

	domain := defaultDomain
	if flag.NArg() >= 1 {
		domain = strings.TrimSuffix(flag.Arg(0), ".")
	}

	level := "INFO"
	if *debug {
		level = "DEBUG"
	}
	logger := logging.Configure(logging.Config{Level: level, JSON: *jsonLog})

	rootAddr, err := netip.ParseAddrPort(*root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -root address: %v\n", err)
		os.Exit(2)
	}

	policy := resolver.PolicyStrict
	if *lenient {
		policy = resolver.PolicyLenient
	}

	r := resolver.New(resolver.Options{
		Exchanger: &resolver.UDPExchanger{Timeout: *timeout},
		Logger:    logger,
		Root:      rootAddr,
		MaxDepth:  *depth,
		Policy:    policy,
	})

	lookup, err := r.Resolve(context.Background(), domain)
	if err != nil {
		logger.Debug("resolution aborted", "error", err)
		fmt.Println("Not found")
		os.Exit(1)
	}
	if !lookup.Found {
		fmt.Println("Not found")
		os.Exit(1)
	}
	fmt.Printf("Found %s\n", lookup.Addr)
}
