package ratelimit

import (
	"strings"
	"time"
)

// EndpointConfig limits one route. Paths ending in "/" match as prefixes.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int
	Window time.Duration
	Burst  int
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	Endpoints       []EndpointConfig
}

// DefaultConfig is enabled with the default endpoint tiers.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    600,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       map[string]bool{},
		Blacklist:       map[string]bool{},
		Endpoints:       DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs limits the routes that fan out to the recommendation backend.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Backend fan-out: one call per subject or per unresolved label.
		{Path: "/skills/refresh", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/skills/resolve", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/skills/extract", Method: "POST", Limit: 20, Window: time.Minute, Burst: 5},
		{Path: "/recommendations/jobs", Method: "POST", Limit: 20, Window: time.Minute, Burst: 5},

		// Single backend calls.
		{Path: "/skills/search", Method: "GET", Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/pathway/", Method: "GET", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/subjects", Method: "GET", Limit: 60, Window: time.Minute, Burst: 10},
	}
}

// ParseIPList parses a comma-separated list of client addresses.
func ParseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
