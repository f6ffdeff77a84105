// Package contact relays contact form submissions as two emails: an
// acknowledgement to the submitter and a notification to the club inbox.
package contact

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nyaruka/phonenumbers"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/clubfutbol/clubsite/internal/email"
	"github.com/clubfutbol/clubsite/internal/ratelimit"
)

const (
	maxNameLength    = 200
	maxSubjectLength = 200
	maxMessageLength = 5000
)

type Request struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type Result struct {
	UserEmailID  string
	AdminEmailID string
}

// ValidationError rejects a submission before anything is sent.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// RateLimitError is returned when the sender or client IP is throttled.
type RateLimitError struct {
	RetryAfter time.Duration
	Reason     string
}

func (e *RateLimitError) Error() string {
	return "too many contact requests, please try again later"
}

// MailSendError reports a failed delivery. Both sends are always attempted;
// User and Admin hold whichever failed.
type MailSendError struct {
	User  error
	Admin error
}

func (e *MailSendError) Error() string {
	var parts []string
	if e.User != nil {
		parts = append(parts, "acknowledgement: "+e.User.Error())
	}
	if e.Admin != nil {
		parts = append(parts, "admin notice: "+e.Admin.Error())
	}
	return "send contact email: " + strings.Join(parts, "; ")
}

func (e *MailSendError) Unwrap() []error {
	var errs []error
	if e.User != nil {
		errs = append(errs, e.User)
	}
	if e.Admin != nil {
		errs = append(errs, e.Admin)
	}
	return errs
}

type Config struct {
	UserSender    string
	AdminSender   string
	AdminAddress  string
	Club          email.ClubIdentity
	DefaultRegion string
	SendTimeout   time.Duration
}

type Service struct {
	sender  email.EmailSender
	limiter *ratelimit.Limiter
	cfg     Config
	now     func() time.Time
}

// NewService builds the relay. limiter may be nil to disable throttling.
func NewService(sender email.EmailSender, limiter *ratelimit.Limiter, cfg Config) *Service {
	if cfg.DefaultRegion == "" {
		cfg.DefaultRegion = "ES"
	}
	return &Service{
		sender:  sender,
		limiter: limiter,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Submit validates req and sends both emails concurrently. clientIP feeds
// the per-IP limit and may be empty.
func (s *Service) Submit(ctx context.Context, req Request, clientIP string) (Result, error) {
	logger := log.Ctx(ctx)

	details, err := s.normalize(req)
	if err != nil {
		return Result{}, err
	}

	userMsg, err := email.BuildAcknowledgement(ctx, s.cfg.UserSender, details, s.cfg.Club)
	if err != nil {
		return Result{}, err
	}
	adminMsg, err := email.BuildAdminNotice(ctx, s.cfg.AdminSender, s.cfg.AdminAddress, details)
	if err != nil {
		return Result{}, err
	}

	if s.limiter != nil {
		check := s.limiter.Allow(details.Email, clientIP)
		if !check.Allowed {
			ratelimit.LogRateLimitExceeded(ctx, details.Email, clientIP, check.Reason)
			return Result{}, &RateLimitError{RetryAfter: check.RetryAfter, Reason: check.Reason}
		}
	}

	var (
		result   Result
		userErr  error
		adminErr error
		g        errgroup.Group
	)
	g.Go(func() error {
		result.UserEmailID, userErr = s.send(ctx, userMsg)
		return userErr
	})
	g.Go(func() error {
		result.AdminEmailID, adminErr = s.send(ctx, adminMsg)
		return adminErr
	})
	if err := g.Wait(); err != nil {
		logger.Error().
			AnErr("user_error", userErr).
			AnErr("admin_error", adminErr).
			Str("sender", ratelimit.SanitizeIdentifier(details.Email)).
			Msg("Failed to send contact emails")
		return Result{}, &MailSendError{User: userErr, Admin: adminErr}
	}

	logger.Info().
		Str("user_email_id", result.UserEmailID).
		Str("admin_email_id", result.AdminEmailID).
		Msg("Contact emails sent")
	return result, nil
}

func (s *Service) send(ctx context.Context, msg email.Message) (string, error) {
	sendCtx, cancel := email.NewSendContext(ctx, s.cfg.SendTimeout)
	defer cancel()
	return s.sender.Send(sendCtx, msg)
}

func (s *Service) normalize(req Request) (email.ContactDetails, error) {
	details := email.ContactDetails{
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.TrimSpace(req.Email),
		Subject:    strings.TrimSpace(req.Subject),
		Message:    strings.TrimSpace(req.Message),
		ReceivedAt: s.now(),
	}

	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"name", details.Name, maxNameLength},
		{"email", details.Email, 0},
		{"subject", details.Subject, maxSubjectLength},
		{"message", details.Message, maxMessageLength},
	} {
		if f.value == "" {
			return email.ContactDetails{}, &ValidationError{Field: f.name, Reason: "is required"}
		}
		if f.max > 0 && utf8.RuneCountInString(f.value) > f.max {
			return email.ContactDetails{}, &ValidationError{Field: f.name, Reason: fmt.Sprintf("must be at most %d characters", f.max)}
		}
	}

	addr, err := mail.ParseAddress(details.Email)
	if err != nil || addr.Address != details.Email {
		return email.ContactDetails{}, &ValidationError{Field: "email", Reason: "must be a valid email address"}
	}

	if phone := strings.TrimSpace(req.Phone); phone != "" {
		formatted, err := formatPhone(phone, s.cfg.DefaultRegion)
		if err != nil {
			return email.ContactDetails{}, &ValidationError{Field: "phone", Reason: "must be a valid phone number"}
		}
		details.Phone = formatted
	}
	return details, nil
}

var errInvalidPhone = errors.New("invalid phone number")

func formatPhone(raw, region string) (string, error) {
	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", err
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", errInvalidPhone
	}
	return phonenumbers.Format(num, phonenumbers.INTERNATIONAL), nil
}
