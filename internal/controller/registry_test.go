package controller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edutrack-app/edutrack-bff/internal/schema"
	appErrors "github.com/edutrack-app/edutrack-bff/pkg/errors"
)

func newTestRegistry() *Registry {
	return NewRegistry(newFakeGateway(), []schema.Schema{schema.Student(), schema.Department()},
		time.Minute, time.Minute, nil)
}

func TestRegistryReturnsSameControllerPerSession(t *testing.T) {
	reg := newTestRegistry()

	a, err := reg.Get("sess-1", "student")
	require.NoError(t, err)
	b, err := reg.Get("sess-1", "student")
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestRegistryIsolatesSessionsAndEntities(t *testing.T) {
	reg := newTestRegistry()

	a, err := reg.Get("sess-1", "student")
	require.NoError(t, err)
	b, err := reg.Get("sess-2", "student")
	require.NoError(t, err)
	c, err := reg.Get("sess-1", "department")
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.NotSame(t, a, c)

	// State in one session does not leak into another.
	require.NoError(t, a.StartAdd())
	assert.Equal(t, FormClosed, b.View().FormMode)
}

func TestRegistryRejectsUnknownEntity(t *testing.T) {
	reg := newTestRegistry()

	_, err := reg.Get("sess-1", "teacher")
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))
}

func TestRegistryEntities(t *testing.T) {
	reg := newTestRegistry()
	assert.ElementsMatch(t, []string{"student", "department"}, reg.Entities())
}
