package submit

import (
	"context"
	"errors"
	"testing"

	"github.com/leapstack-labs/asksql/internal/api"
	"github.com/leapstack-labs/asksql/internal/schema"
	"github.com/leapstack-labs/asksql/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	calls  int
	prompt string
	token  string
	gen    *api.Generation
	err    error
	onCall func()
}

func (f *fakeGenerator) ProcessPrompt(_ context.Context, prompt, token string) (*api.Generation, error) {
	f.calls++
	f.prompt = prompt
	f.token = token
	if f.onCall != nil {
		f.onCall()
	}
	return f.gen, f.err
}

func TestSubmit_RejectsEmptyPrompts(t *testing.T) {
	prompts := []string{"", " ", "\t", "\n  \t", "   \r\n"}

	for _, p := range prompts {
		gen := &fakeGenerator{}
		var observed []bool
		w := New(gen, testutil.NewTestLogger(t), func(b bool) { observed = append(observed, b) })

		out := w.Submit(context.Background(), p, "abc")

		assert.ErrorIs(t, out.Err, ErrEmptyPrompt)
		assert.Equal(t, MsgEmptyPrompt, out.Message())
		assert.Equal(t, 0, gen.calls, "no request for %q", p)
		assert.Empty(t, observed)
		assert.False(t, out.OK())
	}
}

func TestSubmit_Success(t *testing.T) {
	gen := &fakeGenerator{gen: &api.Generation{
		DBStructure: schema.Result{{Name: "blog", Tables: []string{"posts"}}},
		Message:     "A blog.",
		DBFilePath:  "/tmp/blog.db",
	}}
	var observed []bool
	w := New(gen, nil, func(b bool) { observed = append(observed, b) })

	out := w.Submit(context.Background(), "create a blog schema", "abc")

	require.True(t, out.OK())
	assert.Equal(t, "", out.Message())
	assert.Equal(t, "create a blog schema", gen.prompt)
	assert.Equal(t, "abc", gen.token)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, []bool{true, false}, observed)
	assert.False(t, w.InFlight())
}

func TestSubmit_SendsTrimmedPrompt(t *testing.T) {
	gen := &fakeGenerator{gen: &api.Generation{Message: "A shop."}}
	w := New(gen, nil, nil)

	out := w.Submit(context.Background(), "  make a shop \n", "abc")

	require.True(t, out.OK())
	assert.Equal(t, "make a shop", gen.prompt)
	assert.Equal(t, "make a shop", out.Prompt)
}

func TestSubmit_Failures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{
			name:    "backend error",
			err:     &api.Error{StatusCode: 500, Message: "quota exceeded"},
			wantMsg: "quota exceeded",
		},
		{
			name:    "backend error without message",
			err:     &api.Error{StatusCode: 500},
			wantMsg: MsgBackendFailed,
		},
		{
			name:    "network rejection",
			err:     &api.TransportError{Op: "/process_prompt", Err: errors.New("Failed to fetch")},
			wantMsg: "Connection error: Failed to fetch",
		},
		{
			name:    "empty exception text",
			err:     &api.TransportError{Err: errors.New("")},
			wantMsg: "Connection error: " + MsgNetworkError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{err: tt.err}
			var observed []bool
			w := New(gen, nil, func(b bool) { observed = append(observed, b) })

			out := w.Submit(context.Background(), "x", "abc")

			assert.False(t, out.OK())
			assert.Equal(t, tt.wantMsg, out.Message())
			assert.Equal(t, []bool{true, false}, observed, "in-flight always cleared")
			assert.False(t, w.InFlight())
		})
	}
}

func TestSubmit_RejectsWhileInFlight(t *testing.T) {
	gen := &fakeGenerator{gen: &api.Generation{}}
	w := New(gen, nil, nil)

	var nested Outcome
	gen.onCall = func() {
		assert.True(t, w.InFlight())
		nested = w.Submit(context.Background(), "again", "abc")
	}

	out := w.Submit(context.Background(), "first", "abc")

	assert.True(t, out.OK())
	assert.ErrorIs(t, nested.Err, ErrInFlight)
	assert.Equal(t, 1, gen.calls)
}

func TestValidate(t *testing.T) {
	got, err := Validate("  make a shop  ")
	require.NoError(t, err)
	assert.Equal(t, "make a shop", got)

	_, err = Validate("   ")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}
