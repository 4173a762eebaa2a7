package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent  []*gomail.Message
	err   error
	delay time.Duration
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.sent = append(f.sent, m...)
	return f.err
}

func newTestClient(d *fakeDialer, timeout time.Duration) *Client {
	return &Client{cfg: Config{From: "clinic@example.com", Timeout: timeout}, d: d}
}

func TestClient_Disabled(t *testing.T) {
	c := New(Config{})
	assert.False(t, c.Enabled())
	err := c.Send(context.Background(), Message{To: "a@b.c", Subject: "x", HTMLBody: "<p>x</p>"})
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestNew_EnabledWithHost(t *testing.T) {
	c := New(Config{Host: "smtp.example.com", Port: 587, From: "clinic@example.com"})
	assert.True(t, c.Enabled())
	assert.Equal(t, 30*time.Second, c.cfg.Timeout)
}

func TestClient_Send(t *testing.T) {
	d := &fakeDialer{}
	c := newTestClient(d, time.Second)

	err := c.Send(context.Background(), Message{
		To:       "patient@example.com",
		Subject:  "Your prescription RX250100001",
		HTMLBody: "<h1>Rx</h1>",
	})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	msg := d.sent[0]
	assert.Equal(t, []string{"patient@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"clinic@example.com"}, msg.GetHeader("From"))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "text/html")
}

func TestClient_SendError(t *testing.T) {
	d := &fakeDialer{err: errors.New("535 auth failed")}
	c := newTestClient(d, time.Second)

	err := c.Send(context.Background(), Message{To: "p@example.com", Subject: "s", TextBody: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "535 auth failed")
}

func TestClient_SendTimesOut(t *testing.T) {
	d := &fakeDialer{delay: 200 * time.Millisecond}
	c := newTestClient(d, 20*time.Millisecond)

	err := c.Send(context.Background(), Message{To: "p@example.com", Subject: "s", TextBody: "t"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_SendContextCancelled(t *testing.T) {
	d := &fakeDialer{delay: 200 * time.Millisecond}
	c := newTestClient(d, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Send(ctx, Message{To: "p@example.com", Subject: "s", TextBody: "t"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildMessage_Validation(t *testing.T) {
	_, err := buildMessage("", Message{To: "a@b.c", Subject: "s"})
	assert.Error(t, err)
	_, err = buildMessage("f@b.c", Message{Subject: "s"})
	assert.Error(t, err)
	_, err = buildMessage("f@b.c", Message{To: "a@b.c", Subject: "  "})
	assert.Error(t, err)
}
