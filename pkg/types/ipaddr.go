//
//  Copyright © Manetu Inc. All rights reserved.
//

package types

import (
	"encoding/json"
	"net/netip"
)

// IPAddr is an IP address or CIDR prefix extension value.
type IPAddr struct {
	value string
}

// NewIPAddr validates s as an IPv4/IPv6 address or prefix.
func NewIPAddr(s string) (IPAddr, error) {
	if s == "" {
		return IPAddr{}, argumentErrorf("ip", "empty input")
	}
	if _, err := netip.ParseAddr(s); err != nil {
		if _, perr := netip.ParsePrefix(s); perr != nil {
			return IPAddr{}, argumentErrorf("ip", "%q is neither an address nor a prefix", s)
		}
	}
	return IPAddr{value: s}, nil
}

func (ip IPAddr) isValue() {}

// Equal implements Value.
func (ip IPAddr) Equal(o Value) bool {
	oip, ok := o.(IPAddr)
	return ok && ip.value == oip.value
}

// ExprString implements Value.
func (ip IPAddr) ExprString() string { return `ip("` + ip.value + `")` }

func (ip IPAddr) String() string { return ip.value }

// MarshalJSON implements Value using the engine's "__extn" escape.
func (ip IPAddr) MarshalJSON() ([]byte, error) {
	return json.Marshal(extnValue{Fn: "ip", Arg: ip.value})
}
