package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edutrack-app/edutrack-bff/internal/models"
)

func rec(id int, name string) models.Record {
	return models.Record{"Id": id, "name": name}
}

func TestSetEntitiesReplacesAndClearsError(t *testing.T) {
	s := New()
	seq := s.NextSeq()
	s.SetLoading(true)
	assert.True(t, s.SetError("boom", seq))

	seq = s.NextSeq()
	applied := s.SetEntities([]models.Record{rec(1, "a"), rec(2, "b")}, seq)
	assert.True(t, applied)

	snap := s.Snapshot()
	assert.Len(t, snap.Items, 2)
	assert.Empty(t, snap.Error)
	assert.False(t, snap.IsLoading)
}

func TestSetEntitiesDiscardsStaleResponse(t *testing.T) {
	s := New()
	first := s.NextSeq()
	second := s.NextSeq()

	assert.True(t, s.SetEntities([]models.Record{rec(2, "newer")}, second))
	assert.False(t, s.SetEntities([]models.Record{rec(1, "older")}, first))

	snap := s.Snapshot()
	assert.Len(t, snap.Items, 1)
	assert.Equal(t, 2, snap.Items[0].ID())
}

func TestSetErrorFromStaleRequestDiscarded(t *testing.T) {
	s := New()
	first := s.NextSeq()
	second := s.NextSeq()

	assert.True(t, s.SetEntities([]models.Record{rec(1, "a")}, second))
	assert.False(t, s.SetError("late failure", first))

	snap := s.Snapshot()
	assert.Empty(t, snap.Error)
}

func TestSetErrorKeepsPriorItems(t *testing.T) {
	s := New()
	assert.True(t, s.SetEntities([]models.Record{rec(1, "a")}, s.NextSeq()))
	assert.True(t, s.SetError("fetch failed", s.NextSeq()))

	snap := s.Snapshot()
	assert.Len(t, snap.Items, 1)
	assert.Equal(t, "fetch failed", snap.Error)
	assert.False(t, snap.IsLoading)
}

func TestAddUpdateRemove(t *testing.T) {
	s := New()
	s.SetEntities([]models.Record{rec(1, "a")}, s.NextSeq())

	s.AddEntity(rec(2, "b"))
	assert.Equal(t, 2, s.Len())

	s.UpdateEntity(rec(2, "b2"))
	got, ok := s.Find(2)
	assert.True(t, ok)
	assert.Equal(t, "b2", got.String("name"))

	// Update of a missing id is a no-op.
	s.UpdateEntity(rec(99, "ghost"))
	assert.Equal(t, 2, s.Len())

	s.RemoveEntity(1)
	assert.Equal(t, 1, s.Len())
	_, ok = s.Find(1)
	assert.False(t, ok)

	// Remove of a missing id is a no-op.
	s.RemoveEntity(1)
	assert.Equal(t, 1, s.Len())
}

func TestSnapshotIsACopy(t *testing.T) {
	s := New()
	s.SetEntities([]models.Record{rec(1, "a")}, s.NextSeq())

	snap := s.Snapshot()
	snap.Items[0]["name"] = "mutated"

	fresh, _ := s.Find(1)
	assert.Equal(t, "a", fresh.String("name"))
}

func TestCurrentRoundTrip(t *testing.T) {
	s := New()
	assert.Nil(t, s.Current())

	s.SetCurrent(rec(5, "picked"))
	got := s.Current()
	assert.Equal(t, 5, got.ID())

	s.SetCurrent(nil)
	assert.Nil(t, s.Current())
}
