// Package localserver emulates the control plane for local development:
// it serves the runtime-interface endpoints off an in-memory queue and
// accepts work over POST /invoke.
package localserver

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

var srv *http.Server

// Serve runs the emulator on addr until Close is called.
func Serve(addr string) {
	gin.SetMode(gin.ReleaseMode)

	srv = &http.Server{
		Addr:    addr,
		Handler: NewEmulator().Router(),
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

// Close shuts the emulator down gracefully.
func Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
