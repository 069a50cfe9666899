package realtime

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisTransportSpansInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	newInstance := func() *Hub {
		client, err := NewRedisClient(ctx, "redis://"+mr.Addr())
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })

		transport := NewRedisTransport(client, "test:realtime")
		h := startHub(t, WithTransport(transport))
		require.NoError(t, transport.Attach(ctx, h))
		return h
	}

	a := newInstance()
	b := newInstance()

	onA := connect(a, "")
	onB := connect(b, "")
	b.Join(onB, "t1")

	a.EmitToTestimonial("t1", EventCommentCreated, map[string]string{"testimonialId": "t1"})
	f := recv(t, onB)
	assert.Equal(t, EventCommentCreated, f.Event)
	assertSilent(t, onA)

	b.Broadcast(EventTestimonialDeleted, TestimonialDeleted{TestimonialID: "t1"})
	assert.Equal(t, EventTestimonialDeleted, recv(t, onA).Event)
	assert.Equal(t, EventTestimonialDeleted, recv(t, onB).Event)
}

func TestRedisTransportFallsBackToLocalDelivery(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	h := startHub(t, WithTransport(NewRedisTransport(client, "test:realtime")))
	c := connect(h, "")
	mr.Close()

	h.Broadcast(EventTestimonialCreated, map[string]string{"id": "t1"})
	assert.Equal(t, EventTestimonialCreated, recv(t, c).Event)
}

func TestNewRedisClientRejectsBadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not a url")
	assert.Error(t, err)
}
