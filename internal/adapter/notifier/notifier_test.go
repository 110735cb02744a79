package notifier

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/semmidev/stowaway/internal/config"
	"github.com/semmidev/stowaway/internal/domain"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEmailSender(t *testing.T) {
	Convey("Given the email sender", t, func() {
		cfg := &config.MailConfig{
			Server:   "127.0.0.1",
			Port:     465,
			Sender:   "backup@example.com",
			Password: "secret",
		}

		Convey("NewEmail", func() {
			Convey("When the server is missing", func() {
				_, err := NewEmail(&config.MailConfig{Sender: "a@example.com", Password: "x"})
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "mail server")
			})

			Convey("When the credential is missing", func() {
				_, err := NewEmail(&config.MailConfig{Server: "smtp.example.com", Sender: "a@example.com"})
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "sender and password")
			})

			Convey("When the port is unset it should default to implicit TLS", func() {
				sender, err := NewEmail(&config.MailConfig{Server: "smtp.example.com", Sender: "a@example.com", Password: "x"})
				So(err, ShouldBeNil)
				So(sender.port, ShouldEqual, 465)
			})
		})

		Convey("buildMessage", func() {
			sender, err := NewEmail(cfg)
			So(err, ShouldBeNil)

			msg := domain.Message{Subject: "Backup finished", Body: "line one\nline two"}

			Convey("When recipients are valid", func() {
				m, err := sender.buildMessage(msg, []string{"ops@example.com", "dev@example.com"})

				Convey("It should address every recipient in one message", func() {
					So(err, ShouldBeNil)
					to := m.GetToString()
					So(len(to), ShouldEqual, 2)
					So(strings.Join(to, ","), ShouldContainSubstring, "ops@example.com")
					So(strings.Join(to, ","), ShouldContainSubstring, "dev@example.com")
				})
			})

			Convey("When a recipient is malformed", func() {
				_, err := sender.buildMessage(msg, []string{"not an address"})

				Convey("It should return an error", func() {
					So(err, ShouldNotBeNil)
					So(err.Error(), ShouldContainSubstring, "invalid recipient address")
				})
			})

			Convey("When there are no recipients", func() {
				_, err := sender.buildMessage(msg, nil)
				So(err, ShouldNotBeNil)
			})
		})

		Convey("Send method", func() {
			Convey("When the mail server is unreachable", func() {
				listener, err := net.Listen("tcp", "127.0.0.1:0")
				So(err, ShouldBeNil)
				port := listener.Addr().(*net.TCPAddr).Port
				listener.Close()

				cfg.Port = port
				sender, err := NewEmail(cfg)
				So(err, ShouldBeNil)

				err = sender.Send(context.Background(), domain.Message{Subject: "s", Body: "b"}, []string{"ops@example.com"})

				Convey("It should return a session error", func() {
					So(err, ShouldNotBeNil)
					So(err.Error(), ShouldContainSubstring, "failed to send mail")
				})
			})
		})
	})
}

type fakeTelegram struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"stowaway","username":"stowaway_bot"}}`)
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		_ = r.ParseForm()
		f.mu.Lock()
		f.texts = append(f.texts, r.FormValue("text"))
		f.mu.Unlock()
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"},"text":"ok"}}`)
	default:
		fmt.Fprint(w, `{"ok":false,"error_code":404,"description":"Not Found"}`)
	}
}

func TestTelegramSender(t *testing.T) {
	Convey("Given a Telegram sender against a fake bot API", t, func() {
		fake := &fakeTelegram{}
		server := httptest.NewServer(fake)
		defer server.Close()

		endpoint := server.URL + "/bot%s/%s"

		Convey("When the chat id is not numeric", func() {
			_, err := newTelegram(&config.TelegramConfig{BotToken: "123:abc", ChatID: "ops"}, endpoint)

			Convey("It should return an error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "invalid telegram chat id")
			})
		})

		Convey("When sending a summary", func() {
			sender, err := newTelegram(&config.TelegramConfig{BotToken: "123:abc", ChatID: "42"}, endpoint)
			So(err, ShouldBeNil)

			err = sender.Send(context.Background(), domain.Message{Subject: "Backup finished", Body: "a.zip uploaded"}, nil)

			Convey("It should post subject and body to the chat", func() {
				So(err, ShouldBeNil)
				fake.mu.Lock()
				defer fake.mu.Unlock()
				So(fake.texts, ShouldResemble, []string{"Backup finished\n\na.zip uploaded"})
			})
		})

		Convey("When the summary is too long", func() {
			sender, err := newTelegram(&config.TelegramConfig{BotToken: "123:abc", ChatID: "42"}, endpoint)
			So(err, ShouldBeNil)

			err = sender.Send(context.Background(), domain.Message{Subject: "s", Body: strings.Repeat("x", 5000)}, nil)

			Convey("It should be truncated to the API limit", func() {
				So(err, ShouldBeNil)
				fake.mu.Lock()
				defer fake.mu.Unlock()
				So(len([]rune(fake.texts[0])), ShouldEqual, telegramMaxMessage)
				So(fake.texts[0], ShouldEndWith, "...")
			})
		})

		Convey("When the summary is long in UTF-16 but not in runes", func() {
			sender, err := newTelegram(&config.TelegramConfig{BotToken: "123:abc", ChatID: "42"}, endpoint)
			So(err, ShouldBeNil)

			// 3000 runes, 6000 UTF-16 code units.
			err = sender.Send(context.Background(), domain.Message{Subject: "s", Body: strings.Repeat("\U0001F4E6", 3000)}, nil)

			Convey("It should be truncated by code units without splitting a rune", func() {
				So(err, ShouldBeNil)
				fake.mu.Lock()
				defer fake.mu.Unlock()
				text := fake.texts[0]
				So(len(utf16.Encode([]rune(text))), ShouldBeLessThanOrEqualTo, telegramMaxMessage)
				So(utf8.ValidString(text), ShouldBeTrue)
				So(text, ShouldEndWith, "\U0001F4E6...")
			})
		})
	})
}
