package login

import "strings"

// ParseBrowser classifies a User-Agent header into a coarse browser label
// for the audit trail. Best-effort operator visibility, not a security
// control. The match order matters: Edge and Opera UAs also contain
// "chrome" and "safari", and Chrome UAs contain "safari".
func ParseBrowser(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "edg"):
		return "Edge"
	case strings.Contains(ua, "opr"), strings.Contains(ua, "opera"):
		return "Opera"
	case strings.Contains(ua, "chrome"):
		return "Chrome"
	case strings.Contains(ua, "firefox"):
		return "Firefox"
	case strings.Contains(ua, "safari"):
		return "Safari"
	default:
		return "Unknown"
	}
}
