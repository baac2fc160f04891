// internal/di/container_test.go
package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainer(t *testing.T) {
	c := NewContainer()

	assert.Nil(t, c.Get("validator"))
	assert.False(t, c.Has("validator"))

	c.Register("validator", "service-instance")
	assert.True(t, c.Has("validator"))
	assert.Equal(t, "service-instance", c.Get("validator"))
	assert.Equal(t, []string{"validator"}, c.GetNames())

	c.Clear()
	assert.False(t, c.Has("validator"))
}

func TestGetContainerSingleton(t *testing.T) {
	assert.Same(t, GetContainer(), GetContainer())
}
