package notification

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jobboard-api/internal/domain"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// SendRequest is an admin ad hoc message to one principal.
type SendRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	Channel string `json:"channel" validate:"omitempty,oneof=email sms"`
	Subject string `json:"subject"`
	Message string `json:"message" validate:"required"`
}

type Mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type Service interface {
	Send(ctx context.Context, req SendRequest) error
}

type ServiceDeps struct {
	UserRepo userStore
	Mailer   Mailer
	SMS      SMSSender
	Log      *zap.Logger
}

type service struct {
	users  userStore
	mailer Mailer
	sms    SMSSender
	log    *zap.Logger
}

func NewService(d ServiceDeps) Service {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &service{users: d.UserRepo, mailer: d.Mailer, sms: d.SMS, log: log}
}

const defaultSubject = "Message from the job board team"

func (s *service) Send(ctx context.Context, req SendRequest) error {
	u, err := s.users.Get(ctx, req.UserID)
	if err != nil {
		return err
	}
	channel := req.Channel
	if channel == "" {
		channel = ChannelEmail
	}
	switch channel {
	case ChannelEmail:
		if s.mailer == nil {
			return fmt.Errorf("email channel not configured: %w", domain.ErrBadRequest)
		}
		subject := strings.TrimSpace(req.Subject)
		if subject == "" {
			subject = defaultSubject
		}
		if err := s.mailer.SendEmail(ctx, u.Email, subject, req.Message); err != nil {
			s.log.Warn("admin email failed", zap.String("user_id", u.UserID), zap.Error(err))
			return fmt.Errorf("send email: %w: %w", domain.ErrUpstream, err)
		}
	case ChannelSMS:
		if s.sms == nil {
			return fmt.Errorf("sms channel not configured: %w", domain.ErrBadRequest)
		}
		if u.Phone == "" {
			return fmt.Errorf("user has no phone number: %w", domain.ErrBadRequest)
		}
		if err := s.sms.SendSMS(ctx, u.Phone, req.Message); err != nil {
			s.log.Warn("admin sms failed", zap.String("user_id", u.UserID), zap.Error(err))
			return fmt.Errorf("send sms: %w: %w", domain.ErrUpstream, err)
		}
	default:
		return fmt.Errorf("unknown channel %q: %w", req.Channel, domain.ErrBadRequest)
	}
	s.log.Info("admin message sent", zap.String("user_id", u.UserID), zap.String("channel", channel))
	return nil
}
