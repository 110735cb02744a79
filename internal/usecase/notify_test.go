package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/semmidev/stowaway/internal/domain"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap/zapcore"
)

func sampleReport() *domain.Report {
	return &domain.Report{
		Bucket: "backups",
		Records: []domain.UploadRecord{
			{Folder: "/data/a", Bucket: "backups", RemoteName: "nightly_a.zip", Success: true},
			{Folder: "/data/b", Bucket: "backups", RemoteName: "nightly_b.zip", Err: errors.New("denied")},
		},
	}
}

func TestSummaryLines(t *testing.T) {
	Convey("Given a report with one success and one failure", t, func() {
		lines := SummaryLines(sampleReport())

		Convey("It should render one line per record plus a total", func() {
			So(len(lines), ShouldEqual, 3)
			So(lines[0], ShouldStartWith, "OK")
			So(lines[0], ShouldContainSubstring, "backups/nightly_a.zip")
			So(lines[1], ShouldStartWith, "FAILED")
			So(lines[1], ShouldContainSubstring, "denied")
			So(lines[2], ShouldEqual, "1 of 2 folder(s) backed up to backups")
		})
	})
}

func TestNotifier(t *testing.T) {
	Convey("Given a Notifier", t, func() {
		log, logs := newObservedLogger()
		mail := &fakeSender{}
		ctx := context.Background()

		Convey("When recipients are given", func() {
			notifier := NewNotifier(mail, nil, log)
			notifier.Notify(ctx, sampleReport(), []string{"ops@example.com", "dev@example.com"})

			Convey("It should send one message to every recipient", func() {
				So(len(mail.messages), ShouldEqual, 1)
				So(mail.messages[0].Subject, ShouldEqual, notificationSubject)
				So(mail.messages[0].Body, ShouldContainSubstring, "nightly_a.zip")
				So(mail.recipients[0], ShouldResemble, []string{"ops@example.com", "dev@example.com"})
			})
		})

		Convey("When there are no recipients", func() {
			notifier := NewNotifier(mail, nil, log)
			notifier.Notify(ctx, sampleReport(), nil)

			Convey("It should not send email", func() {
				So(mail.messages, ShouldBeEmpty)
			})
		})

		Convey("When email is not configured", func() {
			notifier := NewNotifier(nil, nil, log)
			notifier.Notify(ctx, sampleReport(), []string{"ops@example.com"})

			Convey("It should warn instead of failing", func() {
				So(logs.FilterLevelExact(zapcore.WarnLevel).Len(), ShouldEqual, 1)
				warning := logs.FilterLevelExact(zapcore.WarnLevel).All()[0]
				So(warning.Message, ShouldContainSubstring, "email notification disabled")
				So(warning.Message, ShouldNotContainSubstring, "credential")
			})
		})

		Convey("When the mail session fails", func() {
			mail.err = errors.New("535 authentication failed")
			report := sampleReport()
			notifier := NewNotifier(mail, nil, log)

			So(func() { notifier.Notify(ctx, report, []string{"ops@example.com"}) }, ShouldNotPanic)

			Convey("It should log the error and leave the records untouched", func() {
				So(logs.FilterLevelExact(zapcore.ErrorLevel).Len(), ShouldEqual, 1)
				So(report.Records[0].Success, ShouldBeTrue)
				So(report.Records[1].Success, ShouldBeFalse)
			})
		})

		Convey("When a chat channel is configured", func() {
			chat := &fakeSender{}
			notifier := NewNotifier(nil, chat, log)
			notifier.Notify(ctx, sampleReport(), nil)

			Convey("It should post the summary regardless of recipients", func() {
				So(len(chat.messages), ShouldEqual, 1)
				So(chat.messages[0].Body, ShouldContainSubstring, "FAILED")
			})
		})
	})
}
