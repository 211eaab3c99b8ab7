package ratelimit

import "strings"

// UserKey builds the limiter key for an authenticated caller.
func UserKey(userID, endpoint string) string {
	return "user:" + userID + ":" + endpoint
}

// ClientKey builds the limiter key for an anonymous caller. An optional extra
// identifier (e.g. the email being attempted) throttles per-target abuse for
// each IP independently. The store treats keys as opaque strings.
func ClientKey(ip, endpoint string, identifier ...string) string {
	parts := append([]string{ip, endpoint}, identifier...)
	return strings.Join(parts, ":")
}
