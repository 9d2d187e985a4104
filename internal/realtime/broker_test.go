package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChangeEncodesRecords(t *testing.T) {
	c, err := NewChange("operators", ChangeUpdate, map[string]int{"id": 1}, map[string]int{"id": 0})
	require.NoError(t, err)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "operators", c.Table)
	assert.JSONEq(t, `{"id":1}`, string(c.Record))
	assert.JSONEq(t, `{"id":0}`, string(c.OldRecord))

	c, err = NewChange("operators", ChangeDelete, nil, map[string]int{"id": 3})
	require.NoError(t, err)
	assert.Nil(t, c.Record)
}

func TestMemoryBrokerFanOut(t *testing.T) {
	b := NewMemoryBroker()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, err := b.Subscribe(ctx)
	require.NoError(t, err)
	second, err := b.Subscribe(ctx)
	require.NoError(t, err)

	change := Change{ID: "1", Table: "operators", Type: ChangeInsert, Record: json.RawMessage(`{}`)}
	require.NoError(t, b.Publish(ctx, change))

	for _, ch := range []<-chan Change{first, second} {
		select {
		case got := <-ch:
			assert.Equal(t, "1", got.ID)
		case <-time.After(time.Second):
			t.Fatal("change not delivered")
		}
	}
}

func TestMemoryBrokerClosesOnCancel(t *testing.T) {
	b := NewMemoryBroker()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := b.Subscribe(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed")
	}
}

func TestMemoryBrokerDropsForSlowSubscriber(t *testing.T) {
	b := NewMemoryBroker()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := b.Subscribe(ctx)
	require.NoError(t, err)

	for i := 0; i < subscriberBuffer*2; i++ {
		require.NoError(t, b.Publish(ctx, Change{ID: "x"}))
	}
}
