package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignDeterministic(t *testing.T) {
	a := Sign("secret", "intent_1", "pay_1")
	b := Sign("secret", "intent_1", "pay_1")

	assert.Equal(t, a, b)
	assert.Len(t, a, 64) // hex sha256
}

func TestVerify(t *testing.T) {
	sig := Sign("secret", "intent_1", "pay_1")

	assert.True(t, Verify("secret", "intent_1", "pay_1", sig))
	assert.False(t, Verify("secret", "intent_1", "pay_2", sig))
	assert.False(t, Verify("secret", "intent_2", "pay_1", sig))
	assert.False(t, Verify("other", "intent_1", "pay_1", sig))
	assert.False(t, Verify("secret", "intent_1", "pay_1", ""))
}

func TestSignSeparatorMatters(t *testing.T) {
	// "a|bc" and "ab|c" must not collide
	assert.NotEqual(t, Sign("s", "a", "bc"), Sign("s", "ab", "c"))
}
