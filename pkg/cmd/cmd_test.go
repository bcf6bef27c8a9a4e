package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greetOpts struct {
	Loud bool `short:"l" long:"loud" description:"shout"`
	Pos  struct {
		Name string `positional-arg-name:"name"`
	} `positional-args:"yes"`
}

func TestCmd(t *testing.T) {
	t.Run("passes parsed options", func(t *testing.T) {
		var got greetOpts

		c := New("greet", "say hello", func(ctx context.Context, opts greetOpts) error {
			got = opts

			assert.NotNil(t, hclog.FromContext(ctx))
			return nil
		})

		var buf bytes.Buffer
		c.Stderr = &buf

		assert.Equal(t, 0, c.Run([]string{"-l", "bob"}))
		assert.True(t, got.Loud)
		assert.Equal(t, "bob", got.Pos.Name)

		assert.Equal(t, "say hello", c.Synopsis())
		assert.Contains(t, c.Help(), "--loud")
	})

	t.Run("reports errors", func(t *testing.T) {
		c := New("fail", "always fails", func(ctx context.Context, opts struct{}) error {
			return errors.New("boom")
		})

		var buf bytes.Buffer
		c.Stderr = &buf

		assert.Equal(t, 1, c.Run(nil))
		assert.Contains(t, buf.String(), "! Error: boom")
	})

	t.Run("rejects unknown flags", func(t *testing.T) {
		c := New("greet", "say hello", func(ctx context.Context, opts greetOpts) error {
			return nil
		})

		c.Stderr = &bytes.Buffer{}

		assert.Equal(t, 1, c.Run([]string{"--nope"}))
	})

	t.Run("checks the function shape", func(t *testing.T) {
		require.Panics(t, func() { New("x", "", 1) })
		require.Panics(t, func() { New("x", "", func(opts struct{}) error { return nil }) })
		require.Panics(t, func() { New("x", "", func(ctx context.Context, s string) error { return nil }) })
		require.Panics(t, func() { New("x", "", func(ctx context.Context, opts struct{}) {}) })
	})
}
