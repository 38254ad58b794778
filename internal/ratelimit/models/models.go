// Package models holds the rate limiting vocabulary shared by stores and
// middleware.
package models

import (
	"strings"
	"time"
)

// EndpointClass groups routes that share a request budget.
type EndpointClass string

const (
	// ClassAuth covers registration, login and token refresh.
	ClassAuth EndpointClass = "auth"
	// ClassWrite covers mutations of the family graph and photo uploads.
	ClassWrite EndpointClass = "write"
	// ClassRead covers reads of the family graph.
	ClassRead EndpointClass = "read"
)

func (c EndpointClass) IsValid() bool {
	switch c {
	case ClassAuth, ClassWrite, ClassRead:
		return true
	}
	return false
}

// Limit is a request budget over a sliding window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// RateLimitResult is the outcome of one check.
type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"`
}

// RateLimitExceededResponse is the 429 body.
type RateLimitExceededResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	RetryAfter       int    `json:"retry_after"`
}

// SanitizeKeySegment escapes the key delimiter so a caller-controlled value
// cannot spill into an adjacent key segment.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// IPKey is the bucket key for anonymous callers.
func IPKey(class EndpointClass, ip string) string {
	return "rl:ip:" + string(class) + ":" + SanitizeKeySegment(ip)
}

// UserKey is the bucket key for authenticated callers.
func UserKey(class EndpointClass, userID string) string {
	return "rl:user:" + string(class) + ":" + SanitizeKeySegment(userID)
}
