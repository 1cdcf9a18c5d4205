package domain

import "strings"

const (
	RoomIdLength   = 6
	RoomIdAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NormalizeRoomId trims and upper-cases a user supplied room id.
func NormalizeRoomId(roomId string) string {
	return strings.ToUpper(strings.TrimSpace(roomId))
}
