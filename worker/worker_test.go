package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/aura-studio/coldstart/bootstrap"
	"github.com/aura-studio/coldstart/loop"
)

type fakeClient struct {
	nextCalls   int
	initReports int
}

func (c *fakeClient) NextEvent(ctx context.Context) (*loop.Event, error) {
	c.nextCalls++
	return &loop.Event{ID: "e", Payload: []byte(`{}`)}, nil
}

func (c *fakeClient) Dispatch(ctx context.Context, event *loop.Event, handler loop.Handler) error {
	_, err := handler(ctx, event.Payload)
	return err
}

func (c *fakeClient) ReportInitError(ctx context.Context, cause error) error {
	c.initReports++
	return nil
}

func TestRunDefaultBootstrapIntoLoop(t *testing.T) {
	client := &fakeClient{}
	var resolvedRoot string

	err := Run(context.Background(),
		WithBootstrapOptions(bootstrap.WithDefaultPath("app/deps")),
		WithLoopOptions(loop.WithMaxIterations(2)),
		WithRuntimeClient(client),
		WithResolver(func(root string) (loop.Handler, error) {
			resolvedRoot = root
			return func(ctx context.Context, payload []byte) ([]byte, error) {
				return []byte(`"ok"`), nil
			}, nil
		}),
	)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if resolvedRoot != "app/deps" {
		t.Errorf("resolver root = %q, want app/deps", resolvedRoot)
	}
	if client.nextCalls != 2 {
		t.Errorf("next-event calls = %d, want 2", client.nextCalls)
	}
}

func TestRunBootstrapFailureNeverEntersLoop(t *testing.T) {
	client := &fakeClient{}

	err := Run(context.Background(),
		WithBootstrapOptions(bootstrap.WithLoaderPath("/nonexistent/loader.json")),
		WithRuntimeClient(client),
		WithResolver(func(root string) (loop.Handler, error) {
			t.Error("resolver called despite bootstrap failure")
			return nil, nil
		}),
	)
	if !errors.Is(err, bootstrap.ErrConfiguration) {
		t.Fatalf("got %v, want bootstrap.ErrConfiguration", err)
	}
	if client.nextCalls != 0 {
		t.Errorf("next-event calls = %d, want 0", client.nextCalls)
	}
	// Bootstrap failures are not initialization failures; the loop never
	// existed to report one.
	if client.initReports != 0 {
		t.Errorf("init reports = %d, want 0", client.initReports)
	}
}

func TestRunResolverFailureReportsInit(t *testing.T) {
	client := &fakeClient{}

	err := Run(context.Background(),
		WithRuntimeClient(client),
		WithResolver(func(root string) (loop.Handler, error) {
			return nil, errors.New("missing handler")
		}),
	)
	if !errors.Is(err, loop.ErrInitialization) {
		t.Fatalf("got %v, want loop.ErrInitialization", err)
	}
	if client.initReports != 1 {
		t.Errorf("init reports = %d, want 1", client.initReports)
	}
	if client.nextCalls != 0 {
		t.Errorf("next-event calls = %d, want 0", client.nextCalls)
	}
}

func TestRunMissingResolver(t *testing.T) {
	if err := Run(context.Background(), WithRuntimeClient(&fakeClient{})); err == nil {
		t.Fatal("expected error without a resolver")
	}
}

func TestRunUnknownSource(t *testing.T) {
	err := Run(context.Background(),
		WithSource("carrier-pigeon"),
		WithResolver(func(root string) (loop.Handler, error) { return nil, nil }),
	)
	if err == nil {
		t.Fatal("expected error for unknown source")
	}
}

func TestWithConfig(t *testing.T) {
	o := NewOptions(WithConfig([]byte(`
source: sqs
bootstrap:
  dependency:
    source: store://my-bucket/deps.zip
  storage:
    region: eu-west-1
loop:
  loop:
    max: 5
sqs:
  request: https://sqs.example/request
  response: https://sqs.example/response
  wait: 10
`)))

	if o.Source != SourceSQS {
		t.Errorf("Source = %q, want sqs", o.Source)
	}

	bo := bootstrap.NewOptions(o.Bootstrap...)
	if bo.DownloadSource != "store://my-bucket/deps.zip" {
		t.Errorf("bootstrap source = %q", bo.DownloadSource)
	}
	if bo.Region != "eu-west-1" {
		t.Errorf("bootstrap region = %q", bo.Region)
	}

	lo := loop.NewOptions(o.Loop...)
	if lo.MaxIterations != 5 {
		t.Errorf("loop max = %d, want 5", lo.MaxIterations)
	}

	if len(o.SQS) != 3 {
		t.Errorf("sqs options = %d, want 3", len(o.SQS))
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvSource, "store://my-bucket/deps.zip")
	t.Setenv(EnvRegion, "eu-west-1")
	t.Setenv(EnvAccess, "AKID")
	t.Setenv(EnvSecret, "secret")
	t.Setenv(EnvLoopMax, "3")
	t.Setenv(EnvDebug, "true")

	o := NewOptions(FromEnv())

	bo := bootstrap.NewOptions(o.Bootstrap...)
	if bo.DownloadSource != "store://my-bucket/deps.zip" {
		t.Errorf("DownloadSource = %q", bo.DownloadSource)
	}
	if bo.Region != "eu-west-1" {
		t.Errorf("Region = %q", bo.Region)
	}
	if bo.Credentials.AccessKeyID != "AKID" || bo.Credentials.SecretAccessKey != "secret" {
		t.Errorf("Credentials = %+v", bo.Credentials)
	}
	if !bo.DebugMode {
		t.Error("DebugMode not applied")
	}

	lo := loop.NewOptions(o.Loop...)
	if lo.MaxIterations != 3 {
		t.Errorf("MaxIterations = %d, want 3", lo.MaxIterations)
	}
	if !lo.DebugMode {
		t.Error("loop DebugMode not applied")
	}
}
