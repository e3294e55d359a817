package ledgersdk

import (
	"fmt"
	"strconv"
	"strings"
)

// Endpoint is one IPv4 network endpoint of a node; port is always
// explicit, one per entry (spec §3).
type Endpoint struct {
	IP   [4]byte
	Port int32
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%d.%d.%d.%d:%d", e.IP[0], e.IP[1], e.IP[2], e.IP[3], e.Port)
}

// parseEndpoint parses "a.b.c.d:port" into an Endpoint, used by the
// custom-network address book loader (config.go).
func parseEndpoint(s string) (Endpoint, error) {
	host, portStr, ok := strings.Cut(s, ":")
	if !ok {
		return Endpoint{}, NewBasicParseError(fmt.Sprintf("invalid endpoint %q: missing port", s), nil)
	}
	port, err := strconv.ParseInt(portStr, 10, 32)
	if err != nil {
		return Endpoint{}, NewBasicParseError(fmt.Sprintf("invalid endpoint %q: bad port", s), err)
	}
	octets := strings.Split(host, ".")
	if len(octets) != 4 {
		return Endpoint{}, NewBasicParseError(fmt.Sprintf("invalid endpoint %q: expected IPv4 address", s), nil)
	}
	var ep Endpoint
	for i, o := range octets {
		n, err := strconv.ParseUint(o, 10, 8)
		if err != nil {
			return Endpoint{}, NewBasicParseError(fmt.Sprintf("invalid endpoint %q: bad octet", s), err)
		}
		ep.IP[i] = byte(n)
	}
	ep.Port = int32(port)
	return ep, nil
}

// EndpointsEqual reports whether two ordered endpoint sets are identical,
// used by the address-book merge procedure (§4.A rule 1 vs 2) to decide
// whether a node's channel may be reused.
func EndpointsEqual(a, b []Endpoint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
