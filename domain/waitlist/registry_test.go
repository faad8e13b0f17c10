package waitlist

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(ttl time.Duration) *FormRegistry {
	return NewFormRegistry(ttl, func(id string) *Form {
		return NewForm(id, nil, FormOptions{DemoMode: true})
	})
}

func TestFormRegistry_NewIDDoesNotRegister(t *testing.T) {
	registry := newTestRegistry(time.Minute)

	first := registry.NewID()
	second := registry.NewID()

	_, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, 0, registry.Len())
}

func TestFormRegistry_GetReturnsSameInstance(t *testing.T) {
	registry := newTestRegistry(time.Minute)

	form := registry.Get(registry.NewID())

	assert.Same(t, form, registry.Get(form.ID()))
	assert.Equal(t, 1, registry.Len())
}

func TestFormRegistry_UnknownIDCreatesForm(t *testing.T) {
	registry := newTestRegistry(time.Minute)

	form := registry.Get(testFormID)

	assert.Equal(t, testFormID, form.ID())
	assert.Equal(t, Idle{}, form.State())
}

func TestFormRegistry_MalformedIDIsReplaced(t *testing.T) {
	registry := newTestRegistry(time.Minute)

	form := registry.Get("../../etc/passwd")

	_, err := uuid.Parse(form.ID())
	assert.NoError(t, err)
}

func TestFormRegistry_SweepsIdleForms(t *testing.T) {
	registry := newTestRegistry(time.Nanosecond)

	stale := registry.Get(registry.NewID())
	time.Sleep(time.Millisecond)

	for i := 0; i < 300; i++ {
		registry.Get(testFormID)
	}

	assert.NotSame(t, stale, registry.Get(stale.ID()))
}

func TestNewFormRegistry_DefaultTTL(t *testing.T) {
	registry := newTestRegistry(0)

	assert.Equal(t, DefaultFormTTL, registry.ttl)
}
