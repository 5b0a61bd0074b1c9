package instance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDPrefersExplicitSetting(t *testing.T) {
	t.Setenv("DYNO", "web.1")
	t.Setenv("CANDYLAB_INSTANCE_ID", "api-7")
	assert.Equal(t, "api-7", ID())
}

func TestIDFallsBackToDyno(t *testing.T) {
	t.Setenv("CANDYLAB_INSTANCE_ID", "")
	t.Setenv("DYNO", "web.1")
	assert.Equal(t, "web.1", ID())
}

func TestIDNeverEmpty(t *testing.T) {
	t.Setenv("CANDYLAB_INSTANCE_ID", "")
	t.Setenv("DYNO", "")
	assert.NotEmpty(t, ID())
}
