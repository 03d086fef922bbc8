package services

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"wallmag/internal/config"
	"wallmag/internal/utils"
	"wallmag/internal/utils/helpers"
)

const (
	senderName       = "Wall-Magazine"
	resetOTPSubject  = "Wall-Magazine Password Reset OTP"
	loginCodeSubject = "Wall-Magazine sign-in code"

	// потолок на одно письмо, если у вызывающего ctx нет своего дедлайна
	sendTimeout = 15 * time.Second
)

var ErrEmailNotConfigured = errors.New("email delivery is not configured")

type sendMailFunc func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailService отправляет письма через SMTP-релей (SendGrid: user "apikey", пароль: API key).
type EmailService struct {
	auth     smtp.Auth
	fromAddr string
	fromName string
	host     string
	port     string
	send     sendMailFunc
}

func NewEmailService(cfg *config.Config) *EmailService {
	var auth smtp.Auth
	if cfg.EmailAPIKey != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.EmailAPIKey, cfg.SMTPHost)
	}
	return &EmailService{
		auth:     auth,
		fromAddr: cfg.EmailSender,
		fromName: senderName,
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		send:     sendMailContext,
	}
}

func (s *EmailService) Configured() bool {
	return s.auth != nil && s.fromAddr != "" && s.host != ""
}

func (s *EmailService) SendHTML(ctx context.Context, to []string, subject, body string) error {
	if !s.Configured() {
		return ErrEmailNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	for _, rcpt := range to {
		msg := utils.BuildHTMLMessage(s.fromName, s.fromAddr, rcpt, subject, body)
		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		err := s.send(sendCtx, addr, s.auth, s.fromAddr, []string{rcpt}, msg)
		cancel()
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", rcpt, err)
		}
	}
	return nil
}

// sendMailContext делает то же, что smtp.SendMail, но соединение живёт не дольше ctx.
func sendMailContext(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) (err error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	// по отмене или дедлайну ctx соединение закрывается, блокирующее чтение падает
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer func() {
		stop()
		if err != nil && ctx.Err() != nil {
			err = fmt.Errorf("%w: %v", ctx.Err(), err)
		}
	}()

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}
	if a != nil {
		if ok, _ := c.Extension("AUTH"); !ok {
			return errors.New("smtp: server doesn't support AUTH")
		}
		if err := c.Auth(a); err != nil {
			return err
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func (s *EmailService) SendPasswordResetOTP(ctx context.Context, to, name, otp string) error {
	body := helpers.BuildOTPEmailHTML(name, otp, int(OTPTTL.Minutes()))
	return s.SendHTML(ctx, []string{to}, resetOTPSubject, body)
}

func (s *EmailService) SendLoginCode(ctx context.Context, to, otp string) error {
	body := helpers.BuildLoginCodeHTML(otp, int(OTPTTL.Minutes()))
	return s.SendHTML(ctx, []string{to}, loginCodeSubject, body)
}
