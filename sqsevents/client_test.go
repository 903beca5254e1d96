package sqsevents

import (
	"context"
	"errors"
	"testing"

	"github.com/aura-studio/coldstart/loop"
	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/tidwall/gjson"
)

// Client must satisfy the loop's runtime-client contract.
var _ loop.RuntimeClient = (*Client)(nil)

// fakeSQS is an in-memory queue pair.
type fakeSQS struct {
	messages []types.Message
	deleted  []string
	sent     []string
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, params *awssqs.ReceiveMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.ReceiveMessageOutput, error) {
	if len(f.messages) == 0 {
		return &awssqs.ReceiveMessageOutput{}, nil
	}
	msg := f.messages[0]
	f.messages = f.messages[1:]
	return &awssqs.ReceiveMessageOutput{Messages: []types.Message{msg}}, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, params *awssqs.DeleteMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.DeleteMessageOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &awssqs.DeleteMessageOutput{}, nil
}

func (f *fakeSQS) SendMessage(ctx context.Context, params *awssqs.SendMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.SendMessageOutput, error) {
	f.sent = append(f.sent, aws.ToString(params.MessageBody))
	return &awssqs.SendMessageOutput{}, nil
}

func message(id, receipt, body string) types.Message {
	return types.Message{
		MessageId:     aws.String(id),
		ReceiptHandle: aws.String(receipt),
		Body:          aws.String(body),
	}
}

func newTestClient(f *fakeSQS) *Client {
	return NewClient(
		WithSQSClient(f),
		WithRequestQueue("https://sqs.example/request"),
		WithResponseQueue("https://sqs.example/response"),
	)
}

func TestNextEventReceives(t *testing.T) {
	f := &fakeSQS{messages: []types.Message{message("m-1", "r-1", `{"work":1}`)}}
	c := newTestClient(f)

	event, err := c.NextEvent(context.Background())
	if err != nil {
		t.Fatalf("NextEvent: %v", err)
	}
	if event.ID != "m-1" {
		t.Errorf("ID = %q, want m-1", event.ID)
	}
	if string(event.Payload) != `{"work":1}` {
		t.Errorf("Payload = %q", event.Payload)
	}
}

func TestDispatchDeletesAndReplies(t *testing.T) {
	f := &fakeSQS{messages: []types.Message{message("m-1", "r-1", `{}`)}}
	c := newTestClient(f)

	event, err := c.NextEvent(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	err = c.Dispatch(context.Background(), event, func(ctx context.Context, payload []byte) ([]byte, error) {
		return []byte(`"done"`), nil
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if len(f.deleted) != 1 || f.deleted[0] != "r-1" {
		t.Errorf("deleted = %v, want [r-1]", f.deleted)
	}
	if len(f.sent) != 1 {
		t.Fatalf("sent = %v, want one reply", f.sent)
	}
	reply := f.sent[0]
	if gjson.Get(reply, "correlationId").String() != "m-1" {
		t.Errorf("reply correlation = %q", reply)
	}
	if gjson.Get(reply, "payload").String() != `"done"` {
		t.Errorf("reply payload = %q", reply)
	}
}

// A failed handler leaves the message in the queue for redelivery.
func TestDispatchErrorKeepsMessage(t *testing.T) {
	f := &fakeSQS{messages: []types.Message{message("m-1", "r-1", `{}`)}}
	c := newTestClient(f)

	event, err := c.NextEvent(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	handlerErr := errors.New("boom")
	err = c.Dispatch(context.Background(), event, func(ctx context.Context, payload []byte) ([]byte, error) {
		return nil, handlerErr
	})
	if !errors.Is(err, handlerErr) {
		t.Fatalf("Dispatch err = %v, want handler error", err)
	}

	if len(f.deleted) != 0 {
		t.Errorf("deleted = %v, want none on failure", f.deleted)
	}
	if len(f.sent) != 1 || gjson.Get(f.sent[0], "error").String() != "boom" {
		t.Errorf("error reply = %v", f.sent)
	}
}

func TestReportInitError(t *testing.T) {
	f := &fakeSQS{}
	c := newTestClient(f)

	if err := c.ReportInitError(context.Background(), errors.New("no handler")); err != nil {
		t.Fatalf("ReportInitError: %v", err)
	}
	if len(f.sent) != 1 || gjson.Get(f.sent[0], "error").String() != "no handler" {
		t.Errorf("init report = %v", f.sent)
	}
}

func TestReportInitErrorWithoutResponseQueue(t *testing.T) {
	f := &fakeSQS{}
	c := NewClient(WithSQSClient(f), WithRequestQueue("https://sqs.example/request"))

	if err := c.ReportInitError(context.Background(), errors.New("no handler")); err != nil {
		t.Fatalf("ReportInitError: %v", err)
	}
	if len(f.sent) != 0 {
		t.Errorf("sent = %v, want none without a response queue", f.sent)
	}
}
