// Package control implements the runtime-interface client the loop pulls
// invocation events from: one long-poll GET for the next event, one POST
// per result, and a distinguished POST for initialization failures.
package control

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/aura-studio/coldstart/loop"
	"github.com/aws/aws-lambda-go/lambdacontext"
)

const apiVersion = "2018-06-01"

const (
	headerRequestID   = "Lambda-Runtime-Aws-Request-Id"
	headerDeadlineMS  = "Lambda-Runtime-Deadline-Ms"
	headerFunctionARN = "Lambda-Runtime-Invoked-Function-Arn"
)

// errorReport is the control plane's error body shape.
type errorReport struct {
	ErrorMessage string `json:"errorMessage"`
	ErrorType    string `json:"errorType"`
}

// Client speaks the control-plane HTTP protocol. It is a loop.RuntimeClient.
type Client struct {
	*Options
}

func NewClient(opts ...Option) *Client {
	return &Client{
		Options: NewOptions(opts...),
	}
}

func (c *Client) url(parts ...string) string {
	u := "http://" + c.Address + "/" + apiVersion + "/runtime"
	for _, p := range parts {
		u += "/" + p
	}
	return u
}

// NextEvent blocks until the control plane hands out the next invocation.
func (c *Client) NextEvent(ctx context.Context) (*loop.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("invocation", "next"), nil)
	if err != nil {
		return nil, fmt.Errorf("control: build next request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("control: next event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("control: next event: status %d", resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("control: read event payload: %w", err)
	}

	event := &loop.Event{
		ID:                 resp.Header.Get(headerRequestID),
		Payload:            payload,
		InvokedFunctionARN: resp.Header.Get(headerFunctionARN),
	}
	if ms, err := strconv.ParseInt(resp.Header.Get(headerDeadlineMS), 10, 64); err == nil && ms > 0 {
		event.Deadline = time.UnixMilli(ms)
	}

	return event, nil
}

// Dispatch invokes the handler synchronously and reports the outcome to
// the control plane. The handler error, if any, is returned after it has
// been reported.
func (c *Client) Dispatch(ctx context.Context, event *loop.Event, handler loop.Handler) error {
	lc := &lambdacontext.LambdaContext{
		AwsRequestID:       event.ID,
		InvokedFunctionArn: event.InvokedFunctionARN,
	}
	ctx = lambdacontext.NewContext(ctx, lc)

	if !event.Deadline.IsZero() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, event.Deadline)
		defer cancel()
	}

	result, err := handler(ctx, event.Payload)
	if err != nil {
		if perr := c.post(ctx, c.url("invocation", event.ID, "error"), encodeError(err)); perr != nil {
			return fmt.Errorf("control: report invocation error: %w", perr)
		}
		return err
	}

	if perr := c.post(ctx, c.url("invocation", event.ID, "response"), result); perr != nil {
		return fmt.Errorf("control: report invocation result: %w", perr)
	}
	return nil
}

// ReportInitError tells the control plane initialization failed. This is
// not an invocation result; the process will not enter the loop.
func (c *Client) ReportInitError(ctx context.Context, cause error) error {
	if err := c.post(ctx, c.url("init", "error"), encodeError(cause)); err != nil {
		return fmt.Errorf("control: report init error: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

func encodeError(cause error) []byte {
	b, err := json.Marshal(errorReport{
		ErrorMessage: cause.Error(),
		ErrorType:    fmt.Sprintf("%T", cause),
	})
	if err != nil {
		return []byte(`{"errorMessage":"unserializable error"}`)
	}
	return b
}
