package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomKeyIsDirectionIndependent(t *testing.T) {
	assert.Equal(t, "siri|usha", RoomKey("siri", "usha"))
	assert.Equal(t, "siri|usha", RoomKey("usha", "siri"))
}

func TestRoomKeyNormalizes(t *testing.T) {
	assert.Equal(t, "siri|usha", RoomKey("  Usha ", "SIRI"))
}

func TestRoomKeySelfChat(t *testing.T) {
	assert.Equal(t, "siri|siri", RoomKey("siri", "siri"))
}

func TestRoomKeyMissingParticipantFallsBackToGlobal(t *testing.T) {
	assert.Equal(t, GlobalRoom, RoomKey("", "usha"))
	assert.Equal(t, GlobalRoom, RoomKey("siri", "   "))
	assert.Equal(t, GlobalRoom, RoomKey("", ""))
}
