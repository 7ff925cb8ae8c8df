package core

import (
	"net/mail"
	"strings"
)

// NormalizeAddress canonicalizes a raw From header into a comparable key.
// The address inside angle brackets wins; otherwise the first
// whitespace-delimited token is used. Gmail-family addresses collapse
// dot and plus-suffix variants to a single mailbox key; other domains
// pass through lowercased and trimmed.
//
// The function is idempotent: NormalizeAddress(NormalizeAddress(x)) ==
// NormalizeAddress(x).
func NormalizeAddress(rawFrom string) string {
	addr := strings.TrimSpace(rawFrom)
	if parsed, err := mail.ParseAddress(addr); err == nil {
		addr = parsed.Address
	} else if start := strings.LastIndex(addr, "<"); start != -1 {
		if end := strings.Index(addr[start:], ">"); end != -1 {
			addr = addr[start+1 : start+end]
		}
	} else if fields := strings.Fields(addr); len(fields) > 0 {
		addr = fields[0]
	}

	addr = strings.ToLower(strings.TrimSpace(addr))

	at := strings.LastIndex(addr, "@")
	if at == -1 {
		return addr
	}
	local, domain := addr[:at], addr[at+1:]

	if domain != "gmail.com" && domain != "googlemail.com" {
		return addr
	}

	// Gmail ignores dots and anything after a plus in the local part,
	// and googlemail.com is the same mailbox namespace as gmail.com.
	if plus := strings.Index(local, "+"); plus != -1 {
		local = local[:plus]
	}
	local = strings.ReplaceAll(local, ".", "")

	return local + "@gmail.com"
}
