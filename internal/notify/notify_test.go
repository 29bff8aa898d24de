package notify

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	"firebase.google.com/go/messaging"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"
	"github.com/shopspring/decimal"
)

func TestOfferReceivedEmail(t *testing.T) {
	msg, err := OfferReceivedEmail("seller@example.com", OfferEmailData{
		SellerName:  "Sam",
		BuyerName:   "<b>Bob</b>",
		ListingName: "Recipes Blog",
		ListingID:   4,
		OfferID:     9,
		Amount:      decimal.NewFromInt(700),
		AskingPrice: decimal.NewFromInt(1000),
		Message:     "No message provided",
		SiteURL:     "https://market.test",
	})
	if err != nil {
		t.Fatal(err)
	}
	if msg.To != "seller@example.com" || msg.Subject != "New offer on Recipes Blog" {
		t.Fatalf("unexpected header %+v", msg)
	}
	if !strings.Contains(msg.Text, "$700.00") || !strings.Contains(msg.Text, "$1000.00") {
		t.Fatalf("amounts missing from text: %s", msg.Text)
	}
	if strings.Contains(msg.HTML, "<b>Bob</b>") {
		t.Fatal("buyer name should be escaped in html")
	}
	if !strings.Contains(msg.HTML, "https://market.test/listings/4/offers") {
		t.Fatalf("link missing from html: %s", msg.HTML)
	}
}

type fakeSES struct {
	sesiface.SESAPI
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmailWithContext(ctx aws.Context, in *ses.SendEmailInput, opts ...request.Option) (*ses.SendEmailOutput, error) {
	f.input = in
	return &ses.SendEmailOutput{}, f.err
}

func TestSESMailer(t *testing.T) {
	client := &fakeSES{}
	m := &SESMailer{Client: client, From: "no-reply@market.test"}
	err := m.Send(context.Background(), Email{To: "a@example.com", Subject: "Hi", Text: "plain", HTML: "<p>x</p>"})
	if err != nil {
		t.Fatal(err)
	}
	in := client.input
	if aws.StringValue(in.Source) != "no-reply@market.test" || aws.StringValue(in.Destination.ToAddresses[0]) != "a@example.com" {
		t.Fatalf("unexpected input %+v", in)
	}
	if in.Message.Body.Html == nil || aws.StringValue(in.Message.Body.Text.Data) != "plain" {
		t.Fatalf("unexpected body %+v", in.Message.Body)
	}

	client.err = errors.New("throttled")
	if err := m.Send(context.Background(), Email{To: "a@example.com"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestLogMailer(t *testing.T) {
	var buf bytes.Buffer
	m := &LogMailer{Log: log.New(&buf, "", 0)}
	if err := m.Send(context.Background(), Email{To: "a@example.com", Subject: "Hello"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `to=a@example.com subject="Hello"`) {
		t.Fatalf("unexpected log %q", buf.String())
	}
}

type fakeMessaging struct {
	sent []*messaging.Message
}

func (f *fakeMessaging) Send(ctx context.Context, m *messaging.Message) (string, error) {
	f.sent = append(f.sent, m)
	return "projects/x/messages/1", nil
}

func TestFCMPusher(t *testing.T) {
	client := &fakeMessaging{}
	p := &FCMPusher{Client: client}
	if err := p.Push(context.Background(), "device", "New offer", "Bob offered $700", map[string]string{"link": "/offers"}); err != nil {
		t.Fatal(err)
	}
	if len(client.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(client.sent))
	}
	m := client.sent[0]
	if m.Token != "device" || m.Notification.Title != "New offer" || m.Data["link"] != "/offers" {
		t.Fatalf("unexpected message %+v", m)
	}
	if m.APNS.Payload.Aps.Alert.Body != "Bob offered $700" {
		t.Fatalf("unexpected apns body %q", m.APNS.Payload.Aps.Alert.Body)
	}
}
