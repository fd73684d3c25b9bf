package utils

import (
	"strings"

	ua "github.com/mssola/user_agent"
)

// DeviceInfo holds parsed information from a User-Agent string
type DeviceInfo struct {
	DeviceType string `json:"device_type"` // mobile, tablet, desktop
	OS         string `json:"os"`
	Browser    string `json:"browser"`
	IsBot      bool   `json:"is_bot"`
	Raw        string `json:"raw"`
}

// ParseUserAgent parses a User-Agent string and extracts device information
func ParseUserAgent(userAgent string) DeviceInfo {
	if userAgent == "" {
		return DeviceInfo{
			DeviceType: "unknown",
			OS:         "Unknown",
			Browser:    "Unknown",
			Raw:        userAgent,
		}
	}

	parser := ua.New(userAgent)

	info := DeviceInfo{
		Raw:     userAgent,
		IsBot:   parser.Bot(),
		OS:      osName(parser),
		Browser: browserName(parser),
	}
	info.DeviceType = deviceType(parser)

	return info
}

func deviceType(parser *ua.UserAgent) string {
	if parser.Mobile() {
		if isTablet(parser.UA()) {
			return "tablet"
		}
		return "mobile"
	}
	return "desktop"
}

func isTablet(userAgent string) bool {
	lower := strings.ToLower(userAgent)
	for _, indicator := range []string{"ipad", "tablet", "kindle", "nexus 7", "nexus 9", "nexus 10", "sm-t"} {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

func osName(parser *ua.UserAgent) string {
	osInfo := parser.OSInfo()
	if osInfo.Name == "" {
		return "Unknown"
	}
	if osInfo.Version != "" {
		return osInfo.Name + " " + osInfo.Version
	}
	return osInfo.Name
}

func browserName(parser *ua.UserAgent) string {
	name, _ := parser.Browser()
	if name == "" {
		return "Unknown"
	}
	return name
}
