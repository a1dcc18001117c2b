package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP returns the client IP from r.RemoteAddr. Proxy headers are
// not read here; when the server sits behind a trusted proxy, chi's RealIP
// middleware has already rewritten RemoteAddr.
//
// The result is normalised (IPv4-mapped IPv6 becomes IPv4, zones dropped)
// so rate limit keys do not split one client across spellings.
func RealClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	host = strings.TrimSpace(host)
	if i := strings.IndexByte(host, '%'); i >= 0 {
		host = host[:i]
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String()
	}
	return host
}
