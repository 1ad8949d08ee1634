package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/NitinGurawaliya/watch-dog/internal/dto"
)

func TestClient_SendAndReceive(t *testing.T) {
	client := NewClient(2)

	err := client.Send(dto.RealtimeMessage{Type: dto.MessageTypeStats, Count: 3})
	assert.NoError(t, err)

	msg := <-client.Messages()
	assert.Equal(t, dto.MessageTypeStats, msg.Type)
	assert.Equal(t, 3, msg.Count)
}

func TestClient_SendFailsWhenStalled(t *testing.T) {
	client := NewClient(1)

	assert.NoError(t, client.Send(dto.RealtimeMessage{Type: dto.MessageTypeStats}))
	assert.ErrorIs(t, client.Send(dto.RealtimeMessage{Type: dto.MessageTypeStats}), ErrClientStalled)
}

func TestClient_SendFailsAfterClose(t *testing.T) {
	client := NewClient(1)
	client.Close()

	assert.ErrorIs(t, client.Send(dto.RealtimeMessage{Type: dto.MessageTypeStats}), ErrClientClosed)
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	client := NewClient(1)

	client.Close()
	assert.NotPanics(t, client.Close)

	_, ok := <-client.Messages()
	assert.False(t, ok)
}
