package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ecmacore/internal/config"
	"ecmacore/internal/jrt"
	"ecmacore/internal/stress"
	"ecmacore/internal/trace"
)

// setupTracing builds the tracer described by cfg and attaches it to the
// command context. The returned cleanup flushes and closes it.
func setupTracing(cmd *cobra.Command, cfg config.Config) (trace.Tracer, func(), error) {
	tc, err := cfg.TracerConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid trace configuration: %w", err)
	}
	tracer, err := trace.New(tc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)

	cleanup := func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return tracer, cleanup, nil
}

// guardFatal runs fn and converts an engine fatal error into a returned
// error, dumping the trace ring first when one is configured.
func guardFatal(w io.Writer, tracer trace.Tracer, fn func() error) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		fe, ok := jrt.AsFatal(r)
		if !ok {
			panic(r)
		}
		dumpRing(w, tracer)
		err = fe
	}()
	err = fn()
	var ee *stress.EngineError
	if errors.As(err, &ee) && ee.Fatal != nil {
		dumpRing(w, tracer)
	}
	return err
}

func dumpRing(w io.Writer, tracer trace.Tracer) {
	ring, ok := trace.Ring(tracer)
	if !ok {
		return
	}
	fmt.Fprintln(w, "--- last trace events ---")
	if err := ring.Dump(w, trace.FormatText); err != nil {
		fmt.Fprintf(w, "trace: dump error: %v\n", err)
	}
}
