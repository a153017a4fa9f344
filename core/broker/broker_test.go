package broker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"mulligan/core/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	subject string
	data    []byte
	err     error
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	f.subject = subj
	f.data = data
	return f.err
}

func TestPublisher_Publish(t *testing.T) {
	conn := &fakeConn{}
	p := NewPublisher(conn, "catalog.sync.progress")

	err := p.Publish(context.Background(), progress.Event{Locale: "enUS", Processed: 20, Total: 40, Percent: 50, Batch: 1})
	require.NoError(t, err)

	assert.Equal(t, "catalog.sync.progress", conn.subject)
	var ev progress.Event
	require.NoError(t, json.Unmarshal(conn.data, &ev))
	assert.Equal(t, "enUS", ev.Locale)
	assert.Equal(t, 50.0, ev.Percent)
}

func TestPublisher_PublishError(t *testing.T) {
	p := NewPublisher(&fakeConn{err: errors.New("nats: connection closed")}, "s")
	err := p.Publish(context.Background(), progress.Event{})
	assert.ErrorContains(t, err, "connection closed")
}

func TestConfig_Enabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.True(t, Config{URL: "nats://localhost:4222"}.Enabled())
}
