package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshPlayerMessage_Codec(t *testing.T) {
	in := RefreshPlayerMessage{RunID: "run-1", MemberKey: "U1", Username: "AceTheGamer"}

	data, err := Encode(in)
	require.NoError(t, err)
	var out RefreshPlayerMessage
	require.NoError(t, (&client{}).ProcessMessage(data, &out))

	assert.Equal(t, in, out)
}

func TestDecode_Garbage(t *testing.T) {
	var out RefreshPlayerMessage
	assert.Error(t, Decode([]byte{0xc1}, &out))
}

func TestMock_RecordsEncodedMessage(t *testing.T) {
	m := NewMock()
	msg := RefreshPlayerMessage{MemberKey: "U2", Username: "b0lt"}

	require.NoError(t, m.SendMessage(context.Background(), EventRefreshPlayerStats, msg))

	sent := m.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, EventRefreshPlayerStats, sent[0].Topic)
	var back RefreshPlayerMessage
	require.NoError(t, m.ProcessMessage(sent[0].Encoded, &back))
	assert.Equal(t, msg, back)
}

func TestMock_Close(t *testing.T) {
	m := NewMock()
	assert.False(t, m.IsClosed())
	m.Close()
	assert.True(t, m.IsClosed())
}
