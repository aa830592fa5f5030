// Package contact handles the public contact form.
package contact

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/edumedsolutions/edumed/core"
	"github.com/edumedsolutions/edumed/core/gateway"
)

const (
	MsgSent         = "Message sent successfully! We'll get back to you soon."
	MsgReceivedOnly = "Your message has been received. Due to technical issues, you may not receive an immediate email confirmation, but our team will contact you soon."
	MsgFailed       = "Failed to send message. Please try again or contact us directly via email."

	notificationTmpl    = "contact_notification"
	acknowledgementTmpl = "contact_acknowledgement"
)

var (
	NowFunc = time.Now // mockable

	// ErrSubmitFailed means the message could not be stored; nothing was sent.
	ErrSubmitFailed = errors.New("contact message could not be stored")

	Subjects = []string{"admission", "visa", "general"}

	subjectTag  = "subject"
	subjectText = "please select a subject"
)

type Form struct {
	FirstName string `json:"firstName" validate:"required,notblank"`
	LastName  string `json:"lastName" validate:"required,notblank"`
	Email     string `json:"email" validate:"required,looseemail"`
	Phone     string `json:"phone"`
	Subject   string `json:"subject" validate:"required,subject"`
	Message   string `json:"message" validate:"required,notblank"`
}

func (f *Form) Validate(validate *validator.Validate) error {
	f.FirstName = core.CleanString(f.FirstName)
	f.LastName = core.CleanString(f.LastName)
	f.Email = core.CleanString(f.Email)
	f.Phone = core.CleanString(f.Phone)
	f.Subject = core.CleanString(f.Subject, true /* lower */)
	return validate.Struct(f)
}

// Content is the message block stored for the consultants.
func (f Form) Content() string {
	return fmt.Sprintf(
		"Name: %s %s\nEmail: %s\nPhone: %s\nSubject: %s\nMessage: %s",
		f.FirstName, f.LastName, f.Email, f.Phone, f.Subject, f.Message,
	)
}

// Result is what the sender is told after a stored submission.
type Result struct {
	Message   string `json:"message"`
	EmailSent bool   `json:"email_sent"`
}

type Service struct {
	store      gateway.MessageStore
	email      core.EmailService
	consultant mail.Address
	logger     core.Logger
	timeout    time.Duration
}

func NewService(store gateway.MessageStore, email core.EmailService, conf *core.Config, logger core.Logger) *Service {
	return &Service{
		store:      store,
		email:      email,
		consultant: conf.ConsultantEmail(),
		logger:     logger,
		timeout:    conf.RemoteTimeout,
	}
}

// Submit stores the form as a message, then notifies the consultants and acknowledges the sender.
// Only the store write can fail the submission (ErrSubmitFailed); email delivery is best-effort.
// form is expected to be validated.
func (svc *Service) Submit(ctx context.Context, form Form) (Result, error) {
	sctx := ctx
	if svc.timeout > 0 {
		var cancel context.CancelFunc
		sctx, cancel = context.WithTimeout(ctx, svc.timeout)
		defer cancel()
	}

	msg := gateway.Message{
		Content:       form.Content(),
		IsFromStudent: false,
		CreatedAt:     NowFunc().UTC(),
	}
	if err := svc.store.CreateMessages(sctx, msg); err != nil {
		svc.logger.Error(fmt.Sprintf("storing contact message: %v", err), err)
		return Result{}, ErrSubmitFailed
	}

	sender := mail.Address{Name: form.FirstName + " " + form.LastName, Address: form.Email}
	notification := &core.EmailMessage{
		To:           []mail.Address{svc.consultant},
		ReplyTo:      &sender,
		Subject:      "New contact form submission: " + form.Subject,
		TemplateName: notificationTmpl,
		TemplateData: form,
	}
	if err := svc.email.SendMessage(sctx, notification); err != nil {
		svc.logger.Warn(fmt.Sprintf("sending contact notification: %v", err), err)
		return Result{Message: MsgReceivedOnly}, nil
	}

	svc.email.SendMessages(&core.EmailMessage{
		To:           []mail.Address{sender},
		Subject:      "We received your message",
		TemplateName: acknowledgementTmpl,
		TemplateData: form,
	})
	return Result{Message: MsgSent, EmailSent: true}, nil
}

// RegisterValidators registers the subject tag.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(subjectTag, func(fl validator.FieldLevel) bool {
		subj := fl.Field().String()
		for _, s := range Subjects {
			if subj == s {
				return true
			}
		}
		return false
	})
	core.RegisterCustomTranslation(validate, translator, subjectTag, subjectText)
}
