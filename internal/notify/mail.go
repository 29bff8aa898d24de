package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"
)

type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

// SESMailer delivers mail through Amazon SES.
type SESMailer struct {
	Client sesiface.SESAPI
	From   string
}

func NewSESMailer(region, from string) (*SESMailer, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("create ses session: %w", err)
	}
	return &SESMailer{Client: ses.New(sess), From: from}, nil
}

func (m *SESMailer) Send(ctx context.Context, msg Email) error {
	body := &ses.Body{Text: &ses.Content{Charset: aws.String("UTF-8"), Data: aws.String(msg.Text)}}
	if msg.HTML != "" {
		body.Html = &ses.Content{Charset: aws.String("UTF-8"), Data: aws.String(msg.HTML)}
	}
	_, err := m.Client.SendEmailWithContext(ctx, &ses.SendEmailInput{
		Source:      aws.String(m.From),
		Destination: &ses.Destination{ToAddresses: []*string{aws.String(msg.To)}},
		Message: &ses.Message{
			Subject: &ses.Content{Charset: aws.String("UTF-8"), Data: aws.String(msg.Subject)},
			Body:    body,
		},
	})
	if err != nil {
		return fmt.Errorf("ses send to %s: %w", msg.To, err)
	}
	return nil
}

// LogMailer writes mail to the info log instead of sending it.
type LogMailer struct {
	Log *log.Logger
}

func (m *LogMailer) Send(ctx context.Context, msg Email) error {
	m.Log.Printf("mail to=%s subject=%q", msg.To, msg.Subject)
	return nil
}
