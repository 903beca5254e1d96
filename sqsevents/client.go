// Package sqsevents adapts an SQS queue into the loop's runtime-client
// contract: one long-polled message per iteration, deleted only after a
// successful dispatch so failures redeliver.
package sqsevents

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aura-studio/coldstart/loop"
	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
)

// SQSClient is the queue API surface used here.
type SQSClient interface {
	SendMessage(ctx context.Context, params *awssqs.SendMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *awssqs.ReceiveMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *awssqs.DeleteMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.DeleteMessageOutput, error)
}

// result is the body posted to the response queue per invocation.
type result struct {
	CorrelationID string `json:"correlationId"`
	Payload       string `json:"payload,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Client polls a request queue for invocation events. It is a
// loop.RuntimeClient.
type Client struct {
	*Options

	// receipts maps event id to the receipt handle needed for deletion.
	receipts map[string]string
}

func NewClient(opts ...Option) *Client {
	return &Client{
		Options:  NewOptions(opts...),
		receipts: make(map[string]string),
	}
}

// NextEvent long-polls the request queue until a message arrives or the
// context ends.
func (c *Client) NextEvent(ctx context.Context) (*loop.Event, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("sqsevents: next event: %w", err)
		}

		output, err := c.SQSClient.ReceiveMessage(ctx, &awssqs.ReceiveMessageInput{
			QueueUrl:            &c.RequestQueue,
			MaxNumberOfMessages: 1,
			WaitTimeSeconds:     c.WaitSeconds,
		})
		if err != nil {
			return nil, fmt.Errorf("sqsevents: receive: %w", err)
		}
		if len(output.Messages) == 0 {
			continue
		}

		msg := output.Messages[0]
		id := aws.ToString(msg.MessageId)
		if id == "" {
			id = uuid.New().String()
		}
		c.receipts[id] = aws.ToString(msg.ReceiptHandle)

		return &loop.Event{
			ID:      id,
			Payload: []byte(aws.ToString(msg.Body)),
		}, nil
	}
}

// Dispatch runs the handler and settles the message: delete on success,
// leave for redelivery on failure. Results go to the response queue when
// one is configured.
func (c *Client) Dispatch(ctx context.Context, event *loop.Event, handler loop.Handler) error {
	receipt := c.receipts[event.ID]
	delete(c.receipts, event.ID)

	payload, err := handler(ctx, event.Payload)
	if err != nil {
		c.reply(ctx, result{CorrelationID: event.ID, Error: err.Error()})
		return err
	}

	if receipt != "" {
		if _, derr := c.SQSClient.DeleteMessage(ctx, &awssqs.DeleteMessageInput{
			QueueUrl:      &c.RequestQueue,
			ReceiptHandle: &receipt,
		}); derr != nil {
			log.Printf("[SQSEvents] delete message %s: %v", event.ID, derr)
		}
	}

	c.reply(ctx, result{CorrelationID: event.ID, Payload: string(payload)})
	return nil
}

// ReportInitError publishes the initialization failure to the response
// queue so the producer side sees the container never came up.
func (c *Client) ReportInitError(ctx context.Context, cause error) error {
	if c.ResponseQueue == "" {
		log.Printf("[SQSEvents] init error (no response queue): %v", cause)
		return nil
	}
	return c.send(ctx, result{
		CorrelationID: "init-" + uuid.New().String(),
		Error:         cause.Error(),
	})
}

func (c *Client) reply(ctx context.Context, r result) {
	if c.ResponseQueue == "" {
		return
	}
	if err := c.send(ctx, r); err != nil {
		log.Printf("[SQSEvents] reply %s: %v", r.CorrelationID, err)
	}
}

func (c *Client) send(ctx context.Context, r result) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err = c.SQSClient.SendMessage(sendCtx, &awssqs.SendMessageInput{
		QueueUrl:    &c.ResponseQueue,
		MessageBody: aws.String(string(b)),
	})
	return err
}
