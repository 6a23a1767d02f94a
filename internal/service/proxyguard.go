package service

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
)

// ErrBlockedAddress is returned when a proxy fetch would connect to a private or internal address.
var ErrBlockedAddress = errors.New("destination address not allowed")

// blockedCIDRs contains private/internal IP ranges.
var blockedCIDRs = []string{
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"127.0.0.0/8",
	"169.254.0.0/16", // link-local, includes cloud metadata
	"100.64.0.0/10",  // carrier-grade NAT
	"0.0.0.0/8",
	"::1/128",
	"fc00::/7",
	"fe80::/10",
}

var blockedNetworks = parseCIDRs(blockedCIDRs)

func parseCIDRs(cidrs []string) []*net.IPNet {
	networks := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("invalid blocked CIDR %q: %v", cidr, err))
		}
		networks = append(networks, network)
	}
	return networks
}

func isBlockedIP(ip net.IP) bool {
	if ip.IsUnspecified() {
		return true
	}
	for _, network := range blockedNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// denyPrivateDial is a net.Dialer Control hook. It runs after DNS resolution,
// so a public name that resolves to an internal address is still refused.
func denyPrivateDial(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	ip := net.ParseIP(host)
	if ip == nil || isBlockedIP(ip) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
	}
	return nil
}

// targetHost extracts the host from a URL for logging.
// Only the host is logged; image URLs often carry signed query strings.
func targetHost(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "(invalid)"
	}
	return parsed.Host
}
