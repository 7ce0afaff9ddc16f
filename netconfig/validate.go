package netconfig

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	ipv4Pattern     = regexp.MustCompile(`^(\d{1,3})\.(\d{1,3})\.(\d{1,3})\.(\d{1,3})$`)
	hostnamePattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)
)

// ValidIPv4 accepts dotted-quad addresses with in-range octets.
func ValidIPv4(address string) bool {
	match := ipv4Pattern.FindStringSubmatch(address)
	if match == nil {
		return false
	}

	for _, octet := range match[1:] {
		value, err := strconv.Atoi(octet)
		if err != nil || value > 255 {
			return false
		}
	}

	return true
}

// ValidCIDR accepts <ipv4>/<prefix> with a prefix between 0 and 32.
func ValidCIDR(cidr string) bool {
	parts := strings.Split(cidr, "/")
	if len(parts) != 2 {
		return false
	}

	if !ValidIPv4(parts[0]) {
		return false
	}

	prefix, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}

	return prefix >= 0 && prefix <= 32
}

// ValidHostname accepts DNS names, single labels included.
func ValidHostname(name string) bool {
	if len(name) == 0 || len(name) > 253 {
		return false
	}
	return hostnamePattern.MatchString(name)
}
