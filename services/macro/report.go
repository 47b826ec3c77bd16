package macro

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/codes"
)

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

type Reporter struct {
	smtp       SmtpConfig
	recipients []string
}

func NewReporter(config SmtpConfig, recipients []string) Reporter {
	return Reporter{
		smtp:       config,
		recipients: recipients,
	}
}

// SendReport emails the rendered scan table to all configured
// recipients. csvPath optionally attaches the written snapshot file.
func (r Reporter) SendReport(ctx context.Context, result ScanResult, csvPath string) error {
	_, span := tracer.Start(ctx, "SendReport")
	defer span.End()

	if len(r.recipients) == 0 {
		return nil
	}

	var body strings.Builder
	fmt.Fprintf(
		&body, "Macro scan %s finished at %s via %s: %d/%d indicators fetched.\n\n",
		result.Id,
		result.Time.Format("2006-01-02 15:04 UTC"),
		result.Source,
		result.Succeeded,
		len(result.Observations),
	)
	RenderTable(&body, result)

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Macroscan <%s>", r.smtp.EmailAddress)
	mail.To = r.recipients
	mail.Subject = fmt.Sprintf("Macro scan report %s", result.Time.Format("2006-01-02"))
	mail.Text = []byte(body.String())

	if csvPath != "" {
		_, err := mail.AttachFile(csvPath)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to attach csv snapshot")
			return err
		}
	}

	err := mail.Send(
		fmt.Sprintf("%s:%d", r.smtp.Server, r.smtp.Port),
		smtp.PlainAuth("", r.smtp.EmailAddress, r.smtp.Password, r.smtp.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(fmt.Sprintf("%s:%d", r.smtp.Server, r.smtp.Port), nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send report email")
		return err
	}
	return nil
}
