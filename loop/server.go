package loop

import (
	"context"
	"log"
	"os"
)

// engine is the global engine variable for the Loop module.
var engine *Engine

// Serve runs the loop to completion and exits the process: status 0 when
// the iteration bound is reached, fatal log on initialization failure.
func Serve(opts ...Option) {
	engine = NewEngine(opts...)
	if err := engine.Run(context.Background()); err != nil {
		log.Fatalf("[Loop] %v", err)
	}
	os.Exit(0)
}

// Close stops the engine before its next iteration.
func Close() {
	if engine != nil {
		engine.Stop()
	}
}
