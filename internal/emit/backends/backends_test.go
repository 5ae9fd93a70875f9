package backends

import (
	"testing"

	"github.com/leapstack-labs/leapgen/internal/emit"
	"github.com/stretchr/testify/assert"
)

func TestAllRegistered(t *testing.T) {
	for _, name := range []string{"django", "fastapi", "openapi", "smoketest", "sql"} {
		assert.True(t, emit.IsRegistered(name), name)
	}
}
