package application

import "strings"

// GlobalRoom is the sentinel conversation key used when either
// participant is missing. Malformed input lands here instead of being
// scattered over broken per-pair keys.
const GlobalRoom = "global"

// RoomKey returns the canonical conversation key for a pair of users:
// both handles trimmed and lowercased, joined smaller-first with "|".
// The key is identical no matter which side is the sender, e.g.
// RoomKey("usha", "siri") == RoomKey("siri", "usha") == "siri|usha".
func RoomKey(user1, user2 string) string {
	a := strings.ToLower(strings.TrimSpace(user1))
	b := strings.ToLower(strings.TrimSpace(user2))
	if a == "" || b == "" {
		return GlobalRoom
	}
	if a < b {
		return a + "|" + b
	}
	return b + "|" + a
}
