package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lastWriterWins = `name: last writer wins
target: kv
calls:
  - method: set
    args: [foo, bar]
  - method: set
    args: [foo, 5]
  - method: get
    args: [foo]
    expect: 5
`

func TestParse(t *testing.T) {
	t.Parallel()

	s, err := Parse([]byte(lastWriterWins))
	require.NoError(t, err)
	assert.Equal(t, "last writer wins", s.Name)
	assert.Equal(t, "kv", s.Target)
	require.Len(t, s.Calls, 3)

	assert.Equal(t, []any{"foo", 5}, s.Calls[1].Args)
	assert.False(t, s.Calls[1].HasExpect())
	assert.True(t, s.Calls[2].HasExpect())
	assert.Equal(t, 5, s.Calls[2].Expect)
}

func TestParseExplicitNullExpectation(t *testing.T) {
	t.Parallel()

	s, err := Parse([]byte("name: n\ntarget: kv\ncalls:\n  - method: get\n    args: [foo]\n    expect: null\n"))
	require.NoError(t, err)
	assert.True(t, s.Calls[0].HasExpect())
	assert.Nil(t, s.Calls[0].Expect)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "empty", content: "", wantErr: "empty scenario"},
		{name: "missing target", content: "name: n\ncalls:\n  - method: get\n", wantErr: "Target"},
		{name: "no calls", content: "name: n\ntarget: kv\ncalls: []\n", wantErr: "Calls"},
		{name: "missing method", content: "name: n\ntarget: kv\ncalls:\n  - args: [foo]\n", wantErr: "Method"},
		{name: "bad policy", content: "name: n\ntarget: kv\npolicy: maybe\ncalls:\n  - method: get\n", wantErr: "Policy"},
		{name: "unknown field", content: "name: n\ntarget: kv\nsteps: []\n", wantErr: "steps"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "lww.yaml")
	require.NoError(t, os.WriteFile(path, []byte(lastWriterWins), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path)

	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
