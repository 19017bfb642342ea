package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnrichedText(t *testing.T) {
	plain := &CommandRecord{Command: "docker ps"}
	assert.Equal(t, "docker ps", plain.EnrichedText())

	enriched := &CommandRecord{Command: "docker ps", Keywords: "container list"}
	assert.Equal(t, "docker ps container list container list", enriched.EnrichedText())
}
