package localserver

import (
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	headerRequestID   = "Lambda-Runtime-Aws-Request-Id"
	headerDeadlineMS  = "Lambda-Runtime-Deadline-Ms"
	headerFunctionARN = "Lambda-Runtime-Invoked-Function-Arn"
)

// invocation is one queued event with a channel the worker's report lands on.
type invocation struct {
	id      string
	payload []byte
	done    chan outcome
}

type outcome struct {
	body  []byte
	isErr bool
}

// Emulator is the in-memory control plane.
type Emulator struct {
	queue   chan *invocation
	pending sync.Map // id -> *invocation
}

func NewEmulator() *Emulator {
	return &Emulator{
		queue: make(chan *invocation, 64),
	}
}

// Router builds the gin engine with the runtime-interface routes plus the
// local /invoke entry point.
func (e *Emulator) Router() *gin.Engine {
	r := gin.Default()

	r.POST("/invoke", e.Invoke)
	r.GET("/2018-06-01/runtime/invocation/next", e.Next)
	r.POST("/2018-06-01/runtime/invocation/:id/response", e.Response)
	r.POST("/2018-06-01/runtime/invocation/:id/error", e.Error)
	r.POST("/2018-06-01/runtime/init/error", e.InitError)

	return r
}

// Invoke enqueues an event and blocks until the worker reports a result.
func (e *Emulator) Invoke(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	inv := &invocation{
		id:      uuid.New().String(),
		payload: payload,
		done:    make(chan outcome, 1),
	}
	e.pending.Store(inv.id, inv)
	defer e.pending.Delete(inv.id)

	select {
	case e.queue <- inv:
	case <-c.Request.Context().Done():
		c.String(http.StatusServiceUnavailable, "queue full")
		return
	}

	select {
	case out := <-inv.done:
		if out.isErr {
			c.Data(http.StatusInternalServerError, "application/json", out.body)
		} else {
			c.Data(http.StatusOK, "application/octet-stream", out.body)
		}
	case <-c.Request.Context().Done():
		c.String(http.StatusGatewayTimeout, "invocation abandoned")
	}
}

// Next blocks until an event is available, mirroring the control plane's
// long-poll contract.
func (e *Emulator) Next(c *gin.Context) {
	select {
	case inv := <-e.queue:
		deadline := time.Now().Add(5 * time.Minute)
		c.Header(headerRequestID, inv.id)
		c.Header(headerDeadlineMS, strconv.FormatInt(deadline.UnixMilli(), 10))
		c.Header(headerFunctionARN, "arn:aws:lambda:local:000000000000:function:local")
		c.Data(http.StatusOK, "application/octet-stream", inv.payload)
	case <-c.Request.Context().Done():
		c.Status(http.StatusServiceUnavailable)
	}
}

// Response settles an invocation successfully.
func (e *Emulator) Response(c *gin.Context) {
	e.settle(c, false)
}

// Error settles an invocation with a handler error.
func (e *Emulator) Error(c *gin.Context) {
	e.settle(c, true)
}

// InitError fails every waiting caller: the worker will not come up.
func (e *Emulator) InitError(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	e.pending.Range(func(_, v any) bool {
		inv := v.(*invocation)
		select {
		case inv.done <- outcome{body: body, isErr: true}:
		default:
		}
		return true
	})
	c.Status(http.StatusAccepted)
}

func (e *Emulator) settle(c *gin.Context, isErr bool) {
	id := c.Param("id")
	v, ok := e.pending.Load(id)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	// The invocation may already be settled, by InitError for instance;
	// a second report is dropped rather than blocking the handler.
	select {
	case v.(*invocation).done <- outcome{body: body, isErr: isErr}:
	default:
	}
	c.Status(http.StatusAccepted)
}
