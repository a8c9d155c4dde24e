package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ctx  *Context
		want string
	}{
		{name: "nil context", ctx: nil, want: UnknownValue},
		{name: "empty version", ctx: NewContext("", "2026-01-01", "abc123"), want: UnknownValue},
		{name: "release", ctx: NewContext("1.2.0", "2026-01-01", "abc123"), want: "1.2.0"},
		{name: "pre-release", ctx: NewContext("1.2.0-rc.1", "", ""), want: "1.2.0-rc.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.ctx.Version())
		})
	}
}

func TestContextString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1.2.0 (commit abc123, built 2026-01-01)",
		NewContext("1.2.0", "2026-01-01", "abc123").String())
	assert.Equal(t, "unknown (commit unknown, built unknown)", (*Context)(nil).String())
}
