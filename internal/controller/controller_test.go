package controller

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edutrack-app/edutrack-bff/internal/gateway"
	"github.com/edutrack-app/edutrack-bff/internal/models"
	"github.com/edutrack-app/edutrack-bff/internal/schema"
	"github.com/edutrack-app/edutrack-bff/internal/store"
	appErrors "github.com/edutrack-app/edutrack-bff/pkg/errors"
)

// fakeGateway records calls and serves canned rows keyed by Id.
type fakeGateway struct {
	rows      map[int]map[string]interface{}
	nextID    int
	listCalls int
	lastQuery gateway.ListQuery

	listErr   error
	createErr error
	updateErr error
	deleteErr error

	createCalls int
	updateCalls int
	deleteCalls int
}

func newFakeGateway(rows ...map[string]interface{}) *fakeGateway {
	gw := &fakeGateway{rows: map[int]map[string]interface{}{}, nextID: 1}
	for _, row := range rows {
		id := models.Record(row).ID()
		gw.rows[id] = row
		if id >= gw.nextID {
			gw.nextID = id + 1
		}
	}
	return gw
}

func (g *fakeGateway) List(_ context.Context, _ string, q gateway.ListQuery) ([]map[string]interface{}, error) {
	g.listCalls++
	g.lastQuery = q
	if g.listErr != nil {
		return nil, g.listErr
	}
	out := make([]map[string]interface{}, 0, len(g.rows))
	for _, row := range g.rows {
		out = append(out, row)
	}
	return out, nil
}

func (g *fakeGateway) Create(_ context.Context, _ string, fields map[string]interface{}) (map[string]interface{}, error) {
	g.createCalls++
	if g.createErr != nil {
		return nil, g.createErr
	}
	saved := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		saved[k] = v
	}
	saved["Id"] = g.nextID
	g.rows[g.nextID] = saved
	g.nextID++
	return saved, nil
}

func (g *fakeGateway) Update(_ context.Context, _ string, fields map[string]interface{}) (map[string]interface{}, error) {
	g.updateCalls++
	if g.updateErr != nil {
		return nil, g.updateErr
	}
	id := models.Record(fields).ID()
	if _, ok := g.rows[id]; !ok {
		return nil, appErrors.ErrNotFound
	}
	g.rows[id] = fields
	return fields, nil
}

func (g *fakeGateway) Delete(_ context.Context, _ string, id int) error {
	g.deleteCalls++
	if g.deleteErr != nil {
		return g.deleteErr
	}
	if _, ok := g.rows[id]; !ok {
		return appErrors.ErrNotFound
	}
	delete(g.rows, id)
	return nil
}

func studentRow(id int, first, last, grade, dept string) map[string]interface{} {
	return map[string]interface{}{
		"Id":           id,
		"firstName":    first,
		"lastName":     last,
		"gender":       "Other",
		"dateOfBirth":  "2008-01-01",
		"gradeLevel":   grade,
		"email":        first + "@example.edu",
		"contactPhone": "555-0100",
		"department":   dept,
	}
}

func newStudentController(gw Gateway) *Controller {
	return New(schema.Student(), store.New(), gw, nil)
}

func newDepartmentController(gw Gateway) *Controller {
	return New(schema.Department(), store.New(), gw, nil)
}

func TestEnsureLoadedIsIdempotent(t *testing.T) {
	gw := newFakeGateway(studentRow(1, "Ana", "Smith", "10th", "Science"))
	ctrl := newStudentController(gw)
	ctx := context.Background()

	require.NoError(t, ctrl.EnsureLoaded(ctx))
	require.NoError(t, ctrl.EnsureLoaded(ctx))
	require.NoError(t, ctrl.EnsureLoaded(ctx))

	assert.Equal(t, 1, gw.listCalls)
	assert.Equal(t, 1, ctrl.Store().Len())
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	gw := newFakeGateway(
		studentRow(1, "Ana", "Smith", "10th", "Science"),
		studentRow(2, "Bo", "Jones", "11th", "Math"),
	)
	ctrl := newStudentController(gw)
	ctx := context.Background()

	require.NoError(t, ctrl.EnsureLoaded(ctx))

	require.NoError(t, ctrl.SetSearchTerm(ctx, "SMITH"))
	upper := ctrl.Visible()
	require.NoError(t, ctrl.SetSearchTerm(ctx, "smith"))
	lower := ctrl.Visible()

	require.Len(t, upper, 1)
	require.Len(t, lower, 1)
	assert.Equal(t, upper[0].ID(), lower[0].ID())
	assert.Equal(t, "Smith", lower[0].String("lastName"))
}

func TestSearchThreadsIntoQuery(t *testing.T) {
	gw := newFakeGateway(studentRow(1, "Ana", "Smith", "10th", "Science"))
	ctrl := newStudentController(gw)
	ctx := context.Background()

	require.NoError(t, ctrl.EnsureLoaded(ctx))
	require.NoError(t, ctrl.SetSearchTerm(ctx, "ana"))

	assert.Equal(t, "ana", gw.lastQuery.SearchTerm)
	assert.Equal(t, []string{"firstName", "lastName", "email"}, gw.lastQuery.SearchFields)

	// Same term again does not refetch.
	calls := gw.listCalls
	require.NoError(t, ctrl.SetSearchTerm(ctx, "ana"))
	assert.Equal(t, calls, gw.listCalls)
}

func TestFilterChangeScenario(t *testing.T) {
	gw := newFakeGateway(
		studentRow(1, "Ana", "Smith", "10th", "Science"),
		studentRow(2, "Bo", "Jones", "11th", "Science"),
		studentRow(3, "Cy", "Lee", "10th", "Math"),
	)
	ctrl := newStudentController(gw)
	ctx := context.Background()

	require.NoError(t, ctrl.EnsureLoaded(ctx))
	require.NoError(t, ctrl.SetFilter(ctx, "department", "Science"))
	assert.Len(t, ctrl.Visible(), 2)

	require.NoError(t, ctrl.SetFilter(ctx, "department", "Math"))
	visible := ctrl.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "Lee", visible[0].String("lastName"))

	require.NoError(t, ctrl.SetFilter(ctx, "department", "all"))
	assert.Len(t, ctrl.Visible(), 3)
}

func TestSetFilterRejectsUnknownField(t *testing.T) {
	ctrl := newStudentController(newFakeGateway())
	err := ctrl.SetFilter(context.Background(), "shoeSize", "42")
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))
}

func TestSetSortTogglesDirection(t *testing.T) {
	gw := newFakeGateway(studentRow(1, "Ana", "Smith", "10th", "Science"))
	ctrl := newStudentController(gw)
	ctx := context.Background()

	require.NoError(t, ctrl.SetSort(ctx, "firstName"))
	view := ctrl.View()
	assert.Equal(t, "firstName", view.SortField)
	assert.Equal(t, "asc", view.SortDirection)

	require.NoError(t, ctrl.SetSort(ctx, "firstName"))
	assert.Equal(t, "desc", ctrl.View().SortDirection)

	require.NoError(t, ctrl.SetSort(ctx, "lastName"))
	view = ctrl.View()
	assert.Equal(t, "lastName", view.SortField)
	assert.Equal(t, "asc", view.SortDirection)
}

func TestValidationFailureNeverCallsGateway(t *testing.T) {
	gw := newFakeGateway()
	ctrl := newDepartmentController(gw)
	ctx := context.Background()

	require.NoError(t, ctrl.StartAdd())
	_, err := ctrl.Submit(ctx)
	assert.ErrorIs(t, err, appErrors.ErrDraftInvalid)

	assert.Equal(t, 0, gw.createCalls)
	assert.Equal(t, 0, gw.updateCalls)

	view := ctrl.View()
	assert.Equal(t, FormAdding, view.FormMode)
	assert.Equal(t, "Department name is required", view.FieldErrors["name"])
}

func TestSubmitAddHappyPath(t *testing.T) {
	gw := newFakeGateway()
	ctrl := newDepartmentController(gw)
	ctx := context.Background()

	require.NoError(t, ctrl.EnsureLoaded(ctx))
	require.NoError(t, ctrl.StartAdd())
	for name, value := range map[string]interface{}{
		"name":            "Science",
		"code":            "SCI",
		"head":            "Dr. Patel",
		"location":        "Building A",
		"establishedDate": "1998-09-01",
		"studentCount":    "120",
	} {
		require.NoError(t, ctrl.UpdateDraftField(name, value))
	}

	rec, err := ctrl.Submit(ctx)
	require.NoError(t, err)
	assert.True(t, rec.Persisted())

	view := ctrl.View()
	assert.Equal(t, FormClosed, view.FormMode)

	// The new Id appears exactly once in the visible list.
	count := 0
	for _, item := range view.Items {
		if item.ID() == rec.ID() {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	gw := newFakeGateway()
	gw.createErr = appErrors.ErrTransport
	ctrl := newDepartmentController(gw)
	ctx := context.Background()

	require.NoError(t, ctrl.StartAdd())
	require.NoError(t, ctrl.UpdateDraftField("name", "Science"))
	require.NoError(t, ctrl.UpdateDraftField("code", "SCI"))
	require.NoError(t, ctrl.UpdateDraftField("head", "Dr. Patel"))
	require.NoError(t, ctrl.UpdateDraftField("location", "Building A"))
	require.NoError(t, ctrl.UpdateDraftField("establishedDate", "1998-09-01"))

	_, err := ctrl.Submit(ctx)
	require.Error(t, err)

	view := ctrl.View()
	assert.Equal(t, FormAdding, view.FormMode)
	assert.Equal(t, "Science", view.Draft.String("name"))
}

func TestStartEditCopiesRecord(t *testing.T) {
	gw := newFakeGateway(studentRow(7, "Ana", "Smith", "10th", "Science"))
	ctrl := newStudentController(gw)
	ctx := context.Background()

	require.NoError(t, ctrl.EnsureLoaded(ctx))
	require.NoError(t, ctrl.StartEdit(7))

	require.NoError(t, ctrl.UpdateDraftField("firstName", "Anabel"))

	// Draft edits are invisible in the list until saved.
	for _, item := range ctrl.Visible() {
		if item.ID() == 7 {
			assert.Equal(t, "Ana", item.String("firstName"))
		}
	}

	_, err := ctrl.Submit(ctx)
	require.NoError(t, err)
	got, ok := ctrl.Store().Find(7)
	require.True(t, ok)
	assert.Equal(t, "Anabel", got.String("firstName"))
}

func TestStartEditMissingRecord(t *testing.T) {
	ctrl := newStudentController(newFakeGateway())
	require.NoError(t, ctrl.EnsureLoaded(context.Background()))

	err := ctrl.StartEdit(404)
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))
}

func TestOnlyOneFormAtATime(t *testing.T) {
	gw := newFakeGateway(studentRow(1, "Ana", "Smith", "10th", "Science"))
	ctrl := newStudentController(gw)
	require.NoError(t, ctrl.EnsureLoaded(context.Background()))

	require.NoError(t, ctrl.StartAdd())
	assert.ErrorIs(t, ctrl.StartAdd(), appErrors.ErrFormOpen)
	assert.ErrorIs(t, ctrl.StartEdit(1), appErrors.ErrFormOpen)

	ctrl.Cancel()
	require.NoError(t, ctrl.StartEdit(1))
}

func TestCancelDiscardsDraft(t *testing.T) {
	ctrl := newDepartmentController(newFakeGateway())
	require.NoError(t, ctrl.StartAdd())
	require.NoError(t, ctrl.UpdateDraftField("name", "Arts"))

	ctrl.Cancel()

	view := ctrl.View()
	assert.Equal(t, FormClosed, view.FormMode)
	assert.Nil(t, view.Draft)
	assert.ErrorIs(t, ctrl.UpdateDraftField("name", "x"), appErrors.ErrNoOpenForm)
}

func TestRemoveRequiresConfirmation(t *testing.T) {
	gw := newFakeGateway(studentRow(1, "Ana", "Smith", "10th", "Science"))
	ctrl := newStudentController(gw)
	ctx := context.Background()

	require.NoError(t, ctrl.EnsureLoaded(ctx))

	err := ctrl.Remove(ctx, 1, false)
	assert.ErrorIs(t, err, appErrors.ErrConfirmationGate)
	assert.Equal(t, 0, gw.deleteCalls)
	assert.Equal(t, 1, ctrl.Store().Len())

	require.NoError(t, ctrl.Remove(ctx, 1, true))
	assert.Equal(t, 1, gw.deleteCalls)
	assert.Equal(t, 0, ctrl.Store().Len())
}

func TestRemoveAlreadyGoneIsSuccess(t *testing.T) {
	gw := newFakeGateway(studentRow(1, "Ana", "Smith", "10th", "Science"))
	ctrl := newStudentController(gw)
	ctx := context.Background()

	require.NoError(t, ctrl.EnsureLoaded(ctx))
	delete(gw.rows, 1)

	require.NoError(t, ctrl.Remove(ctx, 1, true))
	assert.Equal(t, 0, ctrl.Store().Len())
}

func TestRemoveTransportFailureKeepsRow(t *testing.T) {
	gw := newFakeGateway(studentRow(1, "Ana", "Smith", "10th", "Science"))
	ctrl := newStudentController(gw)
	ctx := context.Background()

	require.NoError(t, ctrl.EnsureLoaded(ctx))
	gw.deleteErr = appErrors.ErrTransport

	err := ctrl.Remove(ctx, 1, true)
	require.Error(t, err)
	assert.Equal(t, 1, ctrl.Store().Len())
}

func TestFailedRefreshKeepsPriorItems(t *testing.T) {
	gw := newFakeGateway(studentRow(1, "Ana", "Smith", "10th", "Science"))
	ctrl := newStudentController(gw)
	ctx := context.Background()

	require.NoError(t, ctrl.EnsureLoaded(ctx))
	gw.listErr = appErrors.ErrFetch

	require.Error(t, ctrl.Refresh(ctx))

	view := ctrl.View()
	assert.Len(t, view.Items, 1)
	assert.NotEmpty(t, view.Error)

	// Recovery clears the error.
	gw.listErr = nil
	require.NoError(t, ctrl.Refresh(ctx))
	assert.Empty(t, ctrl.View().Error)
}

func TestViewDefaults(t *testing.T) {
	ctrl := newStudentController(newFakeGateway())
	view := ctrl.View()

	assert.Equal(t, "student", view.Entity)
	assert.Equal(t, "lastName", view.SortField)
	assert.Equal(t, "asc", view.SortDirection)
	assert.Equal(t, "all", view.Filters["department"])
	assert.Equal(t, "all", view.Filters["gradeLevel"])
	assert.Equal(t, FormClosed, view.FormMode)
}

func TestApplySortOnlyRefetchesOnChange(t *testing.T) {
	gw := newFakeGateway(studentRow(1, "Ana", "Smith", "10th", "Science"))
	ctrl := newStudentController(gw)
	ctx := context.Background()

	require.NoError(t, ctrl.ApplySort(ctx, "firstName", "desc"))
	calls := gw.listCalls
	require.NoError(t, ctrl.ApplySort(ctx, "firstName", "desc"))
	assert.Equal(t, calls, gw.listCalls)

	require.NoError(t, ctrl.ApplySort(ctx, "firstName", "asc"))
	assert.Equal(t, calls+1, gw.listCalls)
}
