package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, title, message string) error {
	args := m.Called(ctx, title, message)
	return args.Error(0)
}

func (m *mockSender) Name() string {
	return m.Called().String(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotifier(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers allowed events to every sender", func(t *testing.T) {
		first := &mockSender{}
		first.On("Send", mock.Anything, "cycle 1", "done").Return(nil).Once()
		second := &mockSender{}
		second.On("Send", mock.Anything, "cycle 1", "done").Return(nil).Once()

		n := NewNotifier([]Sender{first, second}, []string{"cycle_report"}, testLogger())
		assert.NoError(t, n.Notify(ctx, "cycle_report", "cycle 1", "done"))

		first.AssertExpectations(t)
		second.AssertExpectations(t)
	})

	t.Run("filters events outside the allow-list", func(t *testing.T) {
		s := &mockSender{}

		n := NewNotifier([]Sender{s}, []string{"cycle_report"}, testLogger())
		assert.NoError(t, n.Notify(ctx, "opportunity_found", "t", "m"))

		s.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty allow-list lets everything through", func(t *testing.T) {
		s := &mockSender{}
		s.On("Send", mock.Anything, "t", "m").Return(nil).Once()

		n := NewNotifier([]Sender{s}, nil, testLogger())
		assert.NoError(t, n.Notify(ctx, "anything", "t", "m"))
		s.AssertExpectations(t)
	})

	t.Run("one failing sender does not block the others", func(t *testing.T) {
		failing := &mockSender{}
		failing.On("Send", mock.Anything, "t", "m").Return(errors.New("telegram down")).Once()
		failing.On("Name").Return("telegram")

		healthy := &mockSender{}
		healthy.On("Send", mock.Anything, "t", "m").Return(nil).Once()

		n := NewNotifier([]Sender{failing, healthy}, nil, testLogger())
		err := n.Notify(ctx, "cycle_report", "t", "m")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "telegram")

		failing.AssertExpectations(t)
		healthy.AssertExpectations(t)
	})

	t.Run("no senders is a no-op", func(t *testing.T) {
		n := NewNotifier(nil, nil, testLogger())
		assert.NoError(t, n.Notify(ctx, "cycle_report", "t", "m"))
	})
}
