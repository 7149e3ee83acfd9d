// Package mailer delivers outbound email on a background worker. Delivery is
// best-effort: the request path never blocks on SMTP and never sees a send
// failure.
package mailer

import (
	"log"

	"gopkg.in/gomail.v2"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender performs a single delivery attempt.
type Sender interface {
	Send(msg Message) error
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
}

func (s *smtpSender) Send(msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	return s.dialer.DialAndSend(m)
}

// Mailer queues messages for a single worker goroutine. There is no retry:
// at most one delivery attempt per message.
type Mailer struct {
	sender Sender
	queue  chan Message
	done   chan struct{}
}

// New builds a Mailer backed by an SMTP dialer and starts its worker.
func New(host string, port int, user, password, from string) *Mailer {
	return NewWithSender(&smtpSender{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	})
}

// NewWithSender builds a Mailer around any Sender. Tests inject a recorder.
func NewWithSender(sender Sender) *Mailer {
	m := &Mailer{
		sender: sender,
		queue:  make(chan Message, 64),
		done:   make(chan struct{}),
	}
	go m.run()
	return m
}

// Enqueue schedules a message and returns immediately. When the queue is
// full the message is dropped and logged rather than blocking the caller.
func (m *Mailer) Enqueue(to, subject, body string) {
	msg := Message{To: to, Subject: subject, Body: body}

	select {
	case m.queue <- msg:
	default:
		log.Printf("mailer: queue full, dropping %q to %s", subject, to)
	}
}

func (m *Mailer) run() {
	defer close(m.done)
	for msg := range m.queue {
		if err := m.sender.Send(msg); err != nil {
			log.Printf("mailer: failed to send %q to %s: %v", msg.Subject, msg.To, err)
		}
	}
}

// Close drains the queue and stops the worker.
func (m *Mailer) Close() {
	close(m.queue)
	<-m.done
}
