// Package device turns User-Agent headers into the labels recorded when a
// user logs in.
package device

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/mssola/useragent"
)

const unknownDevice = "Unknown Device"

// ParseUserAgent returns a display name such as "Chrome on macOS".
func ParseUserAgent(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return unknownDevice
	}
	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	platform := ua.OS()
	if platform == "" {
		platform = ua.Platform()
	}
	if browser == "" {
		browser = "Unknown Browser"
	}
	if platform == "" {
		platform = "Unknown OS"
	}
	if ua.Mobile() && !strings.Contains(platform, "iPhone") && !strings.Contains(platform, "Android") {
		platform += " (mobile)"
	}
	return strings.TrimSpace(browser + " on " + platform)
}

// Fingerprint hashes the browser name, its major version and the OS so the
// value survives patch upgrades. It is logged, never stored.
func Fingerprint(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return ""
	}
	ua := useragent.New(userAgent)
	browser, version := ua.Browser()
	major, _, _ := strings.Cut(version, ".")
	sum := sha256.Sum256([]byte(browser + "|" + major + "|" + ua.OS()))
	return hex.EncodeToString(sum[:])
}
