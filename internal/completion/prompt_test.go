package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("python", "def add(a, b):\n")
	assert.Contains(t, p, "using python")
	assert.Contains(t, p, "without any explanations")
	assert.Regexp(t, `:\ndef add\(a, b\):\n$`, p)

	p = BuildPrompt("plaintext", "x")
	assert.NotContains(t, p, "plaintext")
}

func TestBuildChatPrompt(t *testing.T) {
	p := BuildChatPrompt("go", "  a function that reverses a string \n")
	assert.Contains(t, p, "Write go code")
	assert.True(t, len(p) > 0 && p[len(p)-1] == 'g', "request is trimmed")
}
