// Package mailer turns queued mail messages into SMTP mail and flushes the
// batched notification digests onto the email queue.
package mailer

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"

	"github.com/carelink-staffing/shift-core/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

// TypeDigest marks a mail message carrying domain.DigestMailData. Every other
// type is a notification kind carrying domain.ShiftMailData.
const TypeDigest = "digest"

// ErrMalformed wraps messages that can never be delivered, however often they
// are retried.
var ErrMalformed = errors.New("malformed mail message")

type Composer struct {
	from   string
	shift  *template.Template
	digest *template.Template
}

func NewComposer(from string) (*Composer, error) {
	shift, err := template.ParseFS(templateFS, "templates/shift_notice.html")
	if err != nil {
		return nil, err
	}
	digest, err := template.ParseFS(templateFS, "templates/digest.html")
	if err != nil {
		return nil, err
	}

	return &Composer{from: from, shift: shift, digest: digest}, nil
}

// envelope is domain.MailMessage with Data left raw until Type is known.
type envelope struct {
	Type string          `json:"type"`
	To   string          `json:"to"`
	Data json.RawMessage `json:"data"`
}

type shiftView struct {
	domain.ShiftMailData
	Lead string
}

type digestView struct {
	domain.DigestMailData
	Lead      string
	ShowStaff bool
}

// Compose builds the mail for a queued message body.
func (c *Composer) Compose(body []byte) (*mail.Msg, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	m := mail.NewMsg()
	if err := m.From(c.from); err != nil {
		return nil, err
	}
	if err := m.To(env.To); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if env.Type == TypeDigest {
		var data domain.DigestMailData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		m.Subject(digestSubject(data.Kind, len(data.Items)))
		view := digestView{
			DigestMailData: data,
			Lead:           digestLead(data.Kind, len(data.Items)),
			ShowStaff:      data.Kind == domain.NotificationShiftConfirmedClient,
		}
		if err := m.SetBodyHTMLTemplate(c.digest, view); err != nil {
			return nil, err
		}
		return m, nil
	}

	kind := domain.NotificationKind(env.Type)
	subject, lead, ok := shiftCopy(kind)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported type %q", ErrMalformed, env.Type)
	}

	var data domain.ShiftMailData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	m.Subject(subject)
	if err := m.SetBodyHTMLTemplate(c.shift, shiftView{ShiftMailData: data, Lead: lead}); err != nil {
		return nil, err
	}
	return m, nil
}

func shiftCopy(kind domain.NotificationKind) (subject, lead string, ok bool) {
	switch kind {
	case domain.NotificationShiftAssignment:
		return "New shift assignment", "You have been assigned the following shift. Please confirm it in the app.", true
	case domain.NotificationShiftConfirmedStaff:
		return "Shift confirmed", "Your shift is confirmed.", true
	case domain.NotificationShiftConfirmedClient:
		return "Staff confirmed for your shift", "A staff member has been confirmed for your shift.", true
	case domain.NotificationShiftReassigned:
		return "Shift reassigned", "The following shift has been reassigned to another colleague. You are no longer booked on it.", true
	case domain.NotificationShiftUnassigned:
		return "Removed from shift", "You have been removed from the following shift.", true
	case domain.NotificationShiftCancelled:
		return "Shift cancelled", "The following shift has been cancelled.", true
	case domain.NotificationUrgentShift:
		return "Urgent cover needed", "We urgently need cover for the following shift.", true
	}
	return "", "", false
}

func digestSubject(kind domain.NotificationKind, n int) string {
	switch kind {
	case domain.NotificationShiftConfirmedClient:
		return fmt.Sprintf("%d shift(s) confirmed", n)
	default:
		return fmt.Sprintf("You have %d new shift assignment(s)", n)
	}
}

func digestLead(kind domain.NotificationKind, n int) string {
	switch kind {
	case domain.NotificationShiftConfirmedClient:
		return fmt.Sprintf("Staff have been confirmed for %d of your shifts:", n)
	default:
		return fmt.Sprintf("You have been assigned %d shift(s). Please confirm them in the app:", n)
	}
}
