package smtp_client

import (
	"context"
	"errors"
	"log/slog"
	"net/textproto"

	"github.com/knadh/smtppool"
)

func (sc *SmtpClients) SendMail(
	to []string,
	subject string,
	htmlContent string,
) error {
	sc.counter += 1
	if len(sc.connectionPool) < 1 {
		sc.connectionPool = initConnectionPool(sc.servers)
		if len(sc.connectionPool) < 1 {
			return errors.New("no servers defined")
		}
	}

	index := sc.counter % len(sc.connectionPool)
	selectedServer := sc.connectionPool[index]

	e := smtppool.Email{
		To:      to,
		From:    sc.servers.From,
		Sender:  sc.servers.Sender,
		ReplyTo: sc.servers.ReplyTo,
		Subject: subject,
		HTML:    []byte(htmlContent),
		Headers: textproto.MIMEHeader{},
	}
	err := selectedServer.Send(e)

	if err != nil {
		// close and try to reconnect
		slog.Error("error when trying to send email", slog.String("error", err.Error()))

		pool, errReconnect := connectToPool(sc.servers.Servers[index])
		if errReconnect != nil {
			slog.Error("cannot reconnect pool", slog.String("error", errReconnect.Error()), slog.String("server", sc.servers.Servers[index].Host))
		} else {
			slog.Info("reconnected to pool", slog.String("server", sc.servers.Servers[index].Host))
			sc.connectionPool[index] = pool
		}
	}
	return err
}

// SendEmail sends to a single recipient; this is the notifier interface the
// credential lifecycle works against.
func (sc *SmtpClients) SendEmail(ctx context.Context, to string, subject string, htmlContent string) error {
	return sc.SendMail([]string{to}, subject, htmlContent)
}
