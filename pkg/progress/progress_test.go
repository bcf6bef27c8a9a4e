package progress

import (
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgress(t *testing.T) {
	t.Run("no writer means no output", func(t *testing.T) {
		ctx := context.Background()

		p := Count(ctx, 3, "fetch")
		p.On("a")
		p.Tick()
		p.Close()

		assert.Nil(t, Downloads(ctx))
	})

	t.Run("tracker passes data through", func(t *testing.T) {
		var buf bytes.Buffer

		ctx := Open(context.Background(), &buf)

		tr := Downloads(ctx)
		require.NotNil(t, tr)

		body := ioutil.NopCloser(strings.NewReader("hello world"))

		rc := tr.TrackProgress("a.tar", 0, 11, body)

		data, err := io.ReadAll(rc)
		require.NoError(t, err)

		require.NoError(t, rc.Close())

		assert.Equal(t, "hello world", string(data))
		assert.NotZero(t, buf.Len())
	})

	t.Run("counts steps", func(t *testing.T) {
		var buf bytes.Buffer

		ctx := Open(context.Background(), &buf)

		p := Count(ctx, 2, "fetch")
		p.On("a")
		p.Tick()
		p.On("b")
		p.Tick()
		p.Close()

		assert.Contains(t, buf.String(), "fetch")
	})
}
