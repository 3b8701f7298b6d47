package config

import (
	"regexp"
	"strings"
)

type SecurityLevel int

const (
	SecurityPublic      SecurityLevel = iota // No bearer token needed
	SecurityAccess                           // Bearer token required
	SecurityCredentials                      // Exchanges credentials for a token; a 401 means bad credentials
)

// EndpointSecurityConfig maps "METHOD /path" routes to their security level.
// Numeric and uuid path segments are normalized to {id} before lookup.
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Auth - Credentials
	"POST /auth/register": SecurityCredentials,
	"POST /auth/login":    SecurityCredentials,

	// Auth - Access Protected
	"GET /auth/validate": SecurityAccess,

	// Equipment catalogue - Public
	"GET /equipments":        SecurityPublic,
	"GET /equipments/{id}":   SecurityPublic,
	"GET /equipments/search": SecurityPublic,

	// Equipment management - Access Protected
	"POST /equipments/add":    SecurityAccess,
	"PUT /equipments/{id}":    SecurityAccess,
	"DELETE /equipments/{id}": SecurityAccess,

	// Bookings - Access Protected
	"POST /bookings":                  SecurityAccess,
	"GET /bookings":                   SecurityAccess,
	"GET /bookings/{id}":              SecurityAccess,
	"DELETE /bookings/{id}":           SecurityAccess,
	"POST /bookings/{id}/confirm":     SecurityAccess,
	"POST /bookings/{id}/complete":    SecurityAccess,
	"GET /bookings/{id}/availability": SecurityAccess,

	// Payments - Access Protected
	"GET /payments/{id}":            SecurityAccess,
	"POST /payments/verify-payment": SecurityAccess,
}

var idSegment = regexp.MustCompile(`^([0-9]+|[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12})$`)

// RouteKey normalizes a method and request path into an EndpointSecurityConfig key
func RouteKey(method, path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		if idSegment.MatchString(s) {
			segments[i] = "{id}"
		}
	}
	return strings.ToUpper(method) + " /" + strings.Join(segments, "/")
}

// GetSecurityLevel returns the security level for a request
func GetSecurityLevel(method, path string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[RouteKey(method, path)]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}
