// Package privacy provides utilities for handling personally identifiable
// information so that raw PII never reaches logs or audit trails.
package privacy

import (
	"fmt"
	"net"
	"strings"
)

// MaskSSN reduces a social security number to its last four digits for
// logging. Dashes are ignored. Values that do not look like an SSN are
// replaced wholesale so malformed input cannot leak.
func MaskSSN(ssn string) string {
	digits := strings.ReplaceAll(ssn, "-", "")
	if len(digits) < 4 {
		return "***"
	}
	return "***-**-" + digits[len(digits)-4:]
}

// AnonymizeIP truncates an IP address to remove the host-identifying portion.
//
// For IPv4 addresses, the last octet is zeroed (e.g., "192.168.1.47" ->
// "192.168.1.0"). For IPv6 addresses, only the /48 prefix is kept.
//
// Returns "invalid" for unparseable IP addresses, and "unknown" for empty strings.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "invalid"
	}

	if v4 := parsed.To4(); v4 != nil {
		return fmt.Sprintf("%d.%d.%d.0", v4[0], v4[1], v4[2])
	}

	v6 := parsed.To16()
	masked := make(net.IP, len(v6))
	copy(masked, v6)
	for i := 6; i < len(masked); i++ {
		masked[i] = 0
	}
	return masked.String()
}
