// Package controller implements the list-view reconciliation logic shared by
// the student and department screens: local view state (search, sort,
// filters, open form), optimistic mutation against the entity store and
// reconciliation with the remote record service.
package controller

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/edutrack-app/edutrack-bff/internal/gateway"
	"github.com/edutrack-app/edutrack-bff/internal/models"
	"github.com/edutrack-app/edutrack-bff/internal/schema"
	"github.com/edutrack-app/edutrack-bff/internal/store"
	appErrors "github.com/edutrack-app/edutrack-bff/pkg/errors"
)

// FormMode is the controller's form state machine: closed → adding|editing →
// closed. Only one of adding/editing may be active at a time.
type FormMode string

const (
	FormClosed  FormMode = "closed"
	FormAdding  FormMode = "adding"
	FormEditing FormMode = "editing"
)

// Gateway is the async boundary to the record service.
type Gateway interface {
	List(ctx context.Context, collection string, q gateway.ListQuery) ([]map[string]interface{}, error)
	Create(ctx context.Context, collection string, fields map[string]interface{}) (map[string]interface{}, error)
	Update(ctx context.Context, collection string, fields map[string]interface{}) (map[string]interface{}, error)
	Delete(ctx context.Context, collection string, id int) error
}

// Controller owns the list-view state for one entity type within one
// session. All operations are serialized; a mutation in flight blocks the
// next intent instead of interleaving drafts.
type Controller struct {
	mu     sync.Mutex
	schema schema.Schema
	store  *store.Store
	gw     Gateway
	logger *zap.Logger

	searchTerm    string
	sortField     string
	sortDirection string
	filters       map[string]string

	mode        FormMode
	draft       models.Record
	fieldErrors map[string]string

	loaded bool
}

// View is the presentation contract: everything the form/table layer needs
// to render, with the visible list already filtered and sorted.
type View struct {
	Entity        string            `json:"entity"`
	Items         []models.Record   `json:"items"`
	TotalCached   int               `json:"totalCached"`
	IsLoading     bool              `json:"isLoading"`
	Error         string            `json:"error,omitempty"`
	SearchTerm    string            `json:"searchTerm"`
	SortField     string            `json:"sortField"`
	SortDirection string            `json:"sortDirection"`
	Filters       map[string]string `json:"filters"`
	FormMode      FormMode          `json:"formMode"`
	Draft         models.Record     `json:"draft,omitempty"`
	FieldErrors   map[string]string `json:"fieldErrors,omitempty"`
}

// New constructs a controller with the schema's defaults: empty search,
// ascending sort on the default field, every filter set to "all".
func New(sch schema.Schema, st *store.Store, gw Gateway, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	filters := make(map[string]string, len(sch.Filters))
	for _, name := range sch.Filters {
		filters[name] = "all"
	}
	return &Controller{
		schema:        sch,
		store:         st,
		gw:            gw,
		logger:        logger,
		sortField:     sch.DefaultSortField,
		sortDirection: "asc",
		filters:       filters,
		mode:          FormClosed,
	}
}

// Store exposes the underlying entity store.
func (c *Controller) Store() *store.Store {
	return c.store
}

// EnsureLoaded issues the initial list() once per controller lifetime.
func (c *Controller) EnsureLoaded(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return nil
	}
	return c.refreshLocked(ctx)
}

// Refresh re-issues list() with the current query.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked(ctx)
}

// SetSearchTerm updates the search term and, since filtering is
// server-assisted, re-issues list().
func (c *Controller) SetSearchTerm(ctx context.Context, term string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.searchTerm == term {
		return nil
	}
	c.searchTerm = term
	return c.refreshLocked(ctx)
}

// SetFilter updates one filter value ("all" disables it) and re-issues
// list().
func (c *Controller) SetFilter(ctx context.Context, name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.schema.Filterable(name) {
		return appErrors.Clone(appErrors.ErrValidation, "unknown filter: "+name)
	}
	if value == "" {
		value = "all"
	}
	if c.filters[name] == value {
		return nil
	}
	c.filters[name] = value
	return c.refreshLocked(ctx)
}

// SetSort flips direction when the field is already active, otherwise sorts
// ascending on the new field. Either way list() is re-issued because the
// sort is threaded into the query.
func (c *Controller) SetSort(ctx context.Context, field string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.schema.Field(field); !ok {
		return appErrors.Clone(appErrors.ErrValidation, "unknown sort field: "+field)
	}
	if c.sortField == field {
		if c.sortDirection == "asc" {
			c.sortDirection = "desc"
		} else {
			c.sortDirection = "asc"
		}
	} else {
		c.sortField = field
		c.sortDirection = "asc"
	}
	return c.refreshLocked(ctx)
}

// ApplySort sets an absolute sort state, re-issuing list() only when it
// differs from the current one.
func (c *Controller) ApplySort(ctx context.Context, field, direction string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.schema.Field(field); !ok {
		return appErrors.Clone(appErrors.ErrValidation, "unknown sort field: "+field)
	}
	if direction != "desc" {
		direction = "asc"
	}
	if c.sortField == field && c.sortDirection == direction {
		return nil
	}
	c.sortField = field
	c.sortDirection = direction
	return c.refreshLocked(ctx)
}

// StartAdd opens the form on an all-default draft.
func (c *Controller) StartAdd() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != FormClosed {
		return appErrors.ErrFormOpen
	}
	c.draft = c.schema.NewDraft()
	c.fieldErrors = map[string]string{}
	c.mode = FormAdding
	return nil
}

// StartEdit deep-copies the persisted entity into the draft so in-progress
// edits stay invisible elsewhere until saved.
func (c *Controller) StartEdit(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != FormClosed {
		return appErrors.ErrFormOpen
	}
	rec, ok := c.store.Find(id)
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, c.schema.Name+" not found")
	}
	c.store.SetCurrent(rec)
	c.draft = rec.Clone()
	c.fieldErrors = map[string]string{}
	c.mode = FormEditing
	return nil
}

// Cancel closes the form and discards the draft.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeFormLocked()
}

// UpdateDraftField coerces the raw value into the field's type and clears
// any existing error for that field.
func (c *Controller) UpdateDraftField(name string, raw interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == FormClosed {
		return appErrors.ErrNoOpenForm
	}
	value, err := c.schema.Coerce(name, raw)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	c.draft[name] = value
	delete(c.fieldErrors, name)
	return nil
}

// Submit validates the draft and dispatches create or update depending on
// the form mode. On gateway failure the form stays open with its draft so
// the user's input is not lost.
func (c *Controller) Submit(ctx context.Context) (models.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == FormClosed {
		return nil, appErrors.ErrNoOpenForm
	}

	if errs := c.schema.Validate(c.draft); len(errs) > 0 {
		c.fieldErrors = errs
		return nil, appErrors.ErrDraftInvalid
	}

	switch c.mode {
	case FormAdding:
		data, err := c.gw.Create(ctx, c.schema.Collection, c.schema.ToWire(c.draft))
		if err != nil {
			return nil, err
		}
		rec := c.schema.FromWire(data)
		c.store.AddEntity(rec)
		c.closeFormLocked()
		c.refreshAfterMutationLocked(ctx, "create")
		return rec, nil
	default:
		data, err := c.gw.Update(ctx, c.schema.Collection, c.schema.ToWire(c.draft))
		if err != nil {
			return nil, err
		}
		rec := c.schema.FromWire(data)
		c.store.UpdateEntity(rec)
		c.closeFormLocked()
		c.refreshAfterMutationLocked(ctx, "update")
		return rec, nil
	}
}

// Remove deletes a record after an explicit confirmation. Without the
// confirmation no gateway call is made and the row stays visible. An
// already-deleted target counts as success for the caller.
func (c *Controller) Remove(ctx context.Context, id int, confirmed bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != FormClosed {
		return appErrors.ErrFormOpen
	}
	if !confirmed {
		return appErrors.ErrConfirmationGate
	}
	if err := c.gw.Delete(ctx, c.schema.Collection, id); err != nil {
		if !appErrors.IsCode(err, appErrors.ErrNotFound.Code) {
			return err
		}
		c.logger.Info("delete target already gone",
			zap.String("entity", c.schema.Name), zap.Int("id", id))
	}
	c.store.RemoveEntity(id)
	c.refreshAfterMutationLocked(ctx, "delete")
	return nil
}

// Visible computes the filtered and sorted list over whatever the store
// currently holds. The client-side pass is redundant right after a refetch
// but load-bearing while the store still holds pre-mutation data.
func (c *Controller) Visible() []models.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := c.store.Snapshot()
	return ComputeVisible(c.schema, snap.Items, c.searchTerm, c.filters, c.sortField, c.sortDirection)
}

// View assembles the presentation snapshot.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := c.store.Snapshot()

	filters := make(map[string]string, len(c.filters))
	for k, v := range c.filters {
		filters[k] = v
	}
	var fieldErrors map[string]string
	if len(c.fieldErrors) > 0 {
		fieldErrors = make(map[string]string, len(c.fieldErrors))
		for k, v := range c.fieldErrors {
			fieldErrors[k] = v
		}
	}

	return View{
		Entity:        c.schema.Name,
		Items:         ComputeVisible(c.schema, snap.Items, c.searchTerm, filters, c.sortField, c.sortDirection),
		TotalCached:   len(snap.Items),
		IsLoading:     snap.IsLoading,
		Error:         snap.Error,
		SearchTerm:    c.searchTerm,
		SortField:     c.sortField,
		SortDirection: c.sortDirection,
		Filters:       filters,
		FormMode:      c.mode,
		Draft:         c.draft.Clone(),
		FieldErrors:   fieldErrors,
	}
}

func (c *Controller) refreshLocked(ctx context.Context) error {
	seq := c.store.NextSeq()
	c.store.SetLoading(true)

	raw, err := c.gw.List(ctx, c.schema.Collection, c.queryLocked())
	if err != nil {
		// Prior items stay visible: stale data beats an empty screen.
		c.store.SetError(appErrors.FromError(err).Message, seq)
		return err
	}

	items := make([]models.Record, 0, len(raw))
	for _, entry := range raw {
		items = append(items, c.schema.FromWire(entry))
	}
	if applied := c.store.SetEntities(items, seq); !applied {
		c.logger.Debug("discarded stale list response",
			zap.String("entity", c.schema.Name), zap.Uint64("seq", seq))
	}
	c.loaded = true
	return nil
}

// refreshAfterMutationLocked restores correct sort/filter/paging after a
// mutation; the optimistic local dispatch was an approximation only. A
// failed refetch keeps the optimistic state and records the store error.
func (c *Controller) refreshAfterMutationLocked(ctx context.Context, action string) {
	if err := c.refreshLocked(ctx); err != nil {
		c.logger.Warn("refetch after mutation failed",
			zap.String("entity", c.schema.Name),
			zap.String("action", action),
			zap.Error(err))
	}
}

func (c *Controller) closeFormLocked() {
	c.mode = FormClosed
	c.draft = nil
	c.fieldErrors = nil
	c.store.SetCurrent(nil)
}

func (c *Controller) queryLocked() gateway.ListQuery {
	filters := make(map[string]string)
	for name, value := range c.filters {
		if value != "" && value != "all" {
			filters[name] = value
		}
	}
	return gateway.ListQuery{
		SearchTerm:    c.searchTerm,
		SearchFields:  c.schema.SearchFields(),
		Filters:       filters,
		SortField:     c.sortField,
		SortDirection: c.sortDirection,
	}
}
