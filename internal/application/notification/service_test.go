package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jobboard-api/internal/domain"
)

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(ctx context.Context, to, subject, body string) error {
	return m.Called(ctx, to, subject, body).Error(0)
}

type mockSMS struct{ mock.Mock }

func (m *mockSMS) SendSMS(ctx context.Context, to, message string) error {
	return m.Called(ctx, to, message).Error(0)
}

var alice = &domain.User{UserID: "u1", Email: "alice@example.com", Phone: "+15551234"}

func TestSend_EmailDefaultChannel(t *testing.T) {
	us := &mockUserStore{}
	ml := &mockMailer{}
	us.On("Get", mock.Anything, "u1").Return(alice, nil)
	ml.On("SendEmail", mock.Anything, "alice@example.com", defaultSubject, "hello").Return(nil)

	err := NewService(ServiceDeps{UserRepo: us, Mailer: ml}).Send(context.Background(), SendRequest{UserID: "u1", Message: "hello"})
	require.NoError(t, err)
	ml.AssertExpectations(t)
}

func TestSend_SMS(t *testing.T) {
	us := &mockUserStore{}
	sms := &mockSMS{}
	us.On("Get", mock.Anything, "u1").Return(alice, nil)
	sms.On("SendSMS", mock.Anything, "+15551234", "hello").Return(nil)

	err := NewService(ServiceDeps{UserRepo: us, SMS: sms}).Send(context.Background(), SendRequest{UserID: "u1", Channel: ChannelSMS, Message: "hello"})
	require.NoError(t, err)
	sms.AssertExpectations(t)
}

func TestSend_DeliveryFailureIsUpstream(t *testing.T) {
	us := &mockUserStore{}
	ml := &mockMailer{}
	us.On("Get", mock.Anything, "u1").Return(alice, nil)
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	err := NewService(ServiceDeps{UserRepo: us, Mailer: ml}).Send(context.Background(), SendRequest{UserID: "u1", Subject: "Hi", Message: "hello"})
	assert.True(t, errors.Is(err, domain.ErrUpstream))
}

func TestSend_UnknownUser(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "nope").Return(nil, domain.ErrNotFound)

	err := NewService(ServiceDeps{UserRepo: us, Mailer: &mockMailer{}}).Send(context.Background(), SendRequest{UserID: "nope", Message: "x"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSend_SMSWithoutPhone(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u2").Return(&domain.User{UserID: "u2"}, nil)

	err := NewService(ServiceDeps{UserRepo: us, SMS: &mockSMS{}}).Send(context.Background(), SendRequest{UserID: "u2", Channel: ChannelSMS, Message: "x"})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}
