package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/semmidev/stowaway/internal/domain"
)

const notificationSubject = "Folder backup completed"

// Notifier sends the run summary. Delivery problems are logged and never
// returned, so they cannot change the outcome of the backup itself.
type Notifier struct {
	mail   domain.Sender
	chat   domain.Sender
	logger Logger
}

// NewNotifier accepts nil senders for disabled channels.
func NewNotifier(mail, chat domain.Sender, logger Logger) *Notifier {
	return &Notifier{
		mail:   mail,
		chat:   chat,
		logger: logger,
	}
}

func (n *Notifier) Notify(ctx context.Context, report *domain.Report, recipients []string) {
	msg := domain.Message{
		Subject: notificationSubject,
		Body:    strings.Join(SummaryLines(report), "\n"),
	}

	if len(recipients) > 0 {
		if n.mail == nil {
			n.logger.Warnf("Email notification to %d recipient(s) skipped: email notification disabled (see startup log)", len(recipients))
		} else if err := n.mail.Send(ctx, msg, recipients); err != nil {
			n.logger.Errorf("Failed to send email notification to %d recipient(s): %v", len(recipients), err)
		} else {
			n.logger.Infof("Sent email notification to %s", strings.Join(recipients, ", "))
		}
	}

	if n.chat != nil {
		if err := n.chat.Send(ctx, msg, nil); err != nil {
			n.logger.Errorf("Failed to send chat notification: %v", err)
		} else {
			n.logger.Infof("Sent chat notification")
		}
	}
}

// SummaryLines renders one human-readable line per upload record.
func SummaryLines(report *domain.Report) []string {
	lines := make([]string, 0, len(report.Records))

	for _, rec := range report.Records {
		if rec.Success {
			lines = append(lines, fmt.Sprintf("OK     %s -> %s/%s", rec.Folder, rec.Bucket, rec.RemoteName))
			continue
		}
		lines = append(lines, fmt.Sprintf("FAILED %s -> %s/%s: %v", rec.Folder, rec.Bucket, rec.RemoteName, rec.Err))
	}

	if len(report.Records) > 0 {
		lines = append(lines, fmt.Sprintf("%d of %d folder(s) backed up to %s",
			len(report.Records)-report.Failed(), len(report.Records), report.Bucket))
	}

	return lines
}
