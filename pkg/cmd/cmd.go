// Package cmd adapts functions of the form
//
//	func(ctx context.Context, opts struct{...}) error
//
// to mitchellh/cli commands, parsing opts with go-flags.
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"reflect"

	"github.com/hashicorp/go-hclog"
	"github.com/jessevdk/go-flags"
	"golang.org/x/sys/unix"
	"lab47.dev/dpm/pkg/progress"
)

type Cmd struct {
	syn, name string
	f         reflect.Value

	opts   reflect.Value
	parser *flags.Parser

	// Stderr receives progress output, logs and the final error. Defaults
	// to os.Stderr.
	Stderr io.Writer
}

var ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()

func New(name, syn string, f interface{}) *Cmd {
	rv := reflect.ValueOf(f)

	if rv.Kind() != reflect.Func {
		panic("must pass a function")
	}

	rt := rv.Type()

	if rt.NumIn() != 2 || rt.In(0) != ctxType {
		panic("must accept a context and an options struct")
	}

	if rt.NumOut() != 1 || !rt.Out(0).Implements(reflect.TypeOf((*error)(nil)).Elem()) {
		panic("must return only an error")
	}

	in := rt.In(1)

	if in.Kind() != reflect.Struct {
		panic("argument must be a struct")
	}

	sv := reflect.New(in)

	parser := flags.NewNamedParser(name, flags.Default)
	parser.ShortDescription = syn
	parser.LongDescription = syn

	_, err := parser.AddGroup("Application Options", "", sv.Interface())
	if err != nil {
		panic(err)
	}

	return &Cmd{
		syn:    syn,
		name:   name,
		f:      rv,
		opts:   sv,
		parser: parser,
	}
}

func (w *Cmd) Help() string {
	var buf bytes.Buffer
	w.parser.WriteHelp(&buf)
	return buf.String()
}

func (w *Cmd) Synopsis() string {
	return w.syn
}

func (w *Cmd) stderr() io.Writer {
	if w.Stderr != nil {
		return w.Stderr
	}

	return os.Stderr
}

// Run parses args and calls the wrapped function with a context that is
// cancelled on SIGINT, SIGQUIT or SIGTERM and carries a logger and a
// progress writer.
func (w *Cmd) Run(args []string) int {
	_, err := w.parser.ParseArgs(args)
	if err != nil {
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := cancelOnSignal(cancel, os.Interrupt, unix.SIGQUIT, unix.SIGTERM)
	defer stop()

	L := hclog.New(&hclog.LoggerOptions{
		Name:   "dpm",
		Level:  hclog.Info,
		Output: w.stderr(),
	})

	ctx = hclog.WithContext(ctx, L.Named(w.name))
	ctx = progress.Open(ctx, w.stderr())

	rets := w.f.Call([]reflect.Value{reflect.ValueOf(ctx), w.opts.Elem()})

	if err, ok := rets[0].Interface().(error); ok && err != nil {
		if L.IsDebug() {
			fmt.Fprintf(w.stderr(), "! Error: %+v\n", err)
		} else {
			fmt.Fprintf(w.stderr(), "! Error: %v\n", err)
		}

		return 1
	}

	return 0
}

func cancelOnSignal(cancel func(), signals ...os.Signal) func() {
	c := make(chan os.Signal, 2)
	signal.Notify(c, signals...)

	go func() {
		for range c {
			cancel()
		}
	}()

	return func() {
		signal.Stop(c)
		close(c)
	}
}
