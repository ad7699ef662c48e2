package personality

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	for _, key := range Keys() {
		p := Lookup(key)
		assert.Equal(t, key, p.Key)
		assert.NotEmpty(t, p.SystemInstruction)
		assert.NotEmpty(t, p.StyleInstructions)
	}
}

func TestLookup_FallsBackToBalanced(t *testing.T) {
	assert.Equal(t, Balanced, Lookup("").Key)
	assert.Equal(t, Balanced, Lookup("drill-sergeant").Key)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, []string{Balanced, Humorous, Joy, Minimalist, Practical}, Keys())
}
