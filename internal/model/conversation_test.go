package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPeerKeyOf(t *testing.T) {
	assert.Equal(t, PeerKeyOf("alice", "bob"), PeerKeyOf("bob", "alice"))
	assert.Equal(t, "5:alice:bob", PeerKeyOf("bob", "alice"))
	assert.NotEqual(t, PeerKeyOf("x:y", "z"), PeerKeyOf("x", "y:z"))
}
