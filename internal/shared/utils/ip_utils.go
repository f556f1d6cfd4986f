package utils

import (
	"net/netip"

	"github.com/gin-gonic/gin"
)

const fallbackIP = "127.0.0.1"

// ExtractClientIP returns the caller address as resolved by gin.
// X-Forwarded-For and X-Real-IP are only honoured when the direct peer is a
// trusted proxy (gin.Engine.SetTrustedProxies), so throttling keyed on this
// value cannot be bypassed by a forged header from an untrusted peer.
func ExtractClientIP(c *gin.Context) string {
	if ip := c.ClientIP(); isValidIP(ip) {
		return ip
	}
	return fallbackIP
}

func isValidIP(ip string) bool {
	_, err := netip.ParseAddr(ip)
	return err == nil
}

// IsPrivateIP reports RFC 1918 / RFC 4193 and loopback addresses.
func IsPrivateIP(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	return addr.IsPrivate() || addr.IsLoopback()
}
