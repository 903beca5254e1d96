package control

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aura-studio/coldstart/loop"
	"github.com/aws/aws-lambda-go/lambdacontext"
)

// controlPlane is a minimal fake of the runtime-interface server.
type controlPlane struct {
	event        []byte
	requestID    string
	deadlineMS   string
	responses    map[string][]byte
	errorBodies  map[string][]byte
	initErrBody  []byte
	nextRequests int
}

func newControlPlane() *controlPlane {
	return &controlPlane{
		event:       []byte(`{"work":"payload"}`),
		requestID:   "req-1",
		deadlineMS:  "32503680000000",
		responses:   map[string][]byte{},
		errorBodies: map[string][]byte{},
	}
}

func (cp *controlPlane) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/2018-06-01/runtime/invocation/next", func(w http.ResponseWriter, r *http.Request) {
		cp.nextRequests++
		w.Header().Set("Lambda-Runtime-Aws-Request-Id", cp.requestID)
		w.Header().Set("Lambda-Runtime-Deadline-Ms", cp.deadlineMS)
		w.Header().Set("Lambda-Runtime-Invoked-Function-Arn", "arn:aws:lambda:us-east-1:123:function:f")
		w.Write(cp.event)
	})
	mux.HandleFunc("/2018-06-01/runtime/init/error", func(w http.ResponseWriter, r *http.Request) {
		cp.initErrBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/2018-06-01/runtime/invocation/", func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/2018-06-01/runtime/invocation/"), "/")
		if len(parts) != 2 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		body, _ := io.ReadAll(r.Body)
		switch parts[1] {
		case "response":
			cp.responses[parts[0]] = body
		case "error":
			cp.errorBodies[parts[0]] = body
		default:
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})
	return mux
}

func startControlPlane(t *testing.T) (*controlPlane, *Client) {
	t.Helper()
	cp := newControlPlane()
	ts := httptest.NewServer(cp.handler())
	t.Cleanup(ts.Close)
	return cp, NewClient(WithAddress(strings.TrimPrefix(ts.URL, "http://")))
}

func TestNextEvent(t *testing.T) {
	cp, client := startControlPlane(t)

	event, err := client.NextEvent(context.Background())
	if err != nil {
		t.Fatalf("NextEvent: %v", err)
	}
	if event.ID != "req-1" {
		t.Errorf("ID = %q, want req-1", event.ID)
	}
	if string(event.Payload) != string(cp.event) {
		t.Errorf("Payload = %q", event.Payload)
	}
	if event.Deadline.IsZero() {
		t.Error("Deadline not parsed")
	}
	if event.InvokedFunctionARN == "" {
		t.Error("ARN not parsed")
	}
	if cp.nextRequests != 1 {
		t.Errorf("next requests = %d, want 1", cp.nextRequests)
	}
}

func TestDispatchReportsResponse(t *testing.T) {
	cp, client := startControlPlane(t)

	var gotRequestID string
	handler := func(ctx context.Context, payload []byte) ([]byte, error) {
		if lc, ok := lambdacontext.FromContext(ctx); ok {
			gotRequestID = lc.AwsRequestID
		}
		if _, ok := ctx.Deadline(); !ok {
			t.Error("handler context has no deadline")
		}
		return []byte(`"done"`), nil
	}

	event := &loop.Event{
		ID:       "req-1",
		Payload:  []byte(`{}`),
		Deadline: time.Now().Add(time.Minute),
	}
	if err := client.Dispatch(context.Background(), event, handler); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if gotRequestID != "req-1" {
		t.Errorf("request id in context = %q, want req-1", gotRequestID)
	}
	if string(cp.responses["req-1"]) != `"done"` {
		t.Errorf("reported response = %q", cp.responses["req-1"])
	}
	if len(cp.errorBodies) != 0 {
		t.Errorf("unexpected error reports: %v", cp.errorBodies)
	}
}

func TestDispatchReportsHandlerError(t *testing.T) {
	cp, client := startControlPlane(t)

	handlerErr := errors.New("business failure")
	handler := func(ctx context.Context, payload []byte) ([]byte, error) {
		return nil, handlerErr
	}

	event := &loop.Event{ID: "req-9", Payload: []byte(`{}`)}
	if err := client.Dispatch(context.Background(), event, handler); !errors.Is(err, handlerErr) {
		t.Fatalf("Dispatch err = %v, want handler error", err)
	}

	body := string(cp.errorBodies["req-9"])
	if !strings.Contains(body, "business failure") {
		t.Errorf("error report = %q", body)
	}
	if len(cp.responses) != 0 {
		t.Errorf("unexpected responses: %v", cp.responses)
	}
}

func TestReportInitError(t *testing.T) {
	cp, client := startControlPlane(t)

	if err := client.ReportInitError(context.Background(), errors.New("resolver blew up")); err != nil {
		t.Fatalf("ReportInitError: %v", err)
	}
	if !strings.Contains(string(cp.initErrBody), "resolver blew up") {
		t.Errorf("init error body = %q", cp.initErrBody)
	}
}
