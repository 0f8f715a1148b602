package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyDeterministic(t *testing.T) {
	a := Key("search", "Zahnarzt", "Berlin", "DE", "50")
	b := Key("search", "Zahnarzt", "Berlin", "DE", "50")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestKeyDistinguishesOps(t *testing.T) {
	a := Key("search", "Acme", "example.com")
	b := Key("enrichment", "Acme", "example.com")
	assert.NotEqual(t, a, b)
}

func TestKeyDistinguishesParams(t *testing.T) {
	a := Key("enrichment", "Acme", "example.com")
	b := Key("enrichment", "Acme", "example.org")
	assert.NotEqual(t, a, b)
}
