package prompt_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/nikbrunner/bmboard/internal/logging"
	"github.com/nikbrunner/bmboard/internal/prompt"
	"gotest.tools/v3/assert"
)

func newDialog(input string, out *bytes.Buffer) *prompt.Dialog {
	return prompt.New(prompt.Params{
		In:         strings.NewReader(input),
		Out:        out,
		Logger:     logging.Discard(),
		Accessible: true,
	})
}

func TestDialog_Confirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"yes", "y\n", true},
		{"no", "n\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			d := newDialog(tt.input, &out)

			got := d.Confirm(context.Background(), "Erase the whole board?")
			assert.Equal(t, got, tt.want)
			assert.Assert(t, strings.Contains(out.String(), "Erase the whole board?"))
		})
	}
}

func TestDialog_CancelledContext(t *testing.T) {
	var out bytes.Buffer
	d := newDialog("y\n", &out)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Assert(t, !d.Confirm(ctx, "Erase?"))
	d.Alert(ctx, "never shown")
	assert.Equal(t, out.String(), "")
}
