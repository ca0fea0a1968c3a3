// Package httpapi serves read-only list endpoints backed by queryspec
// pipelines. Each registered entity owns a template pipeline that is cloned
// for every request and fed from the URL query.
package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"sort"
	"strings"
	"sync"

	"github.com/uptrace/bun"
	"gorm.io/gorm"

	"github.com/bitechdev/QuerySpec/pkg/common"
	"github.com/bitechdev/QuerySpec/pkg/common/adapters/database"
	"github.com/bitechdev/QuerySpec/pkg/config"
	"github.com/bitechdev/QuerySpec/pkg/logger"
	"github.com/bitechdev/QuerySpec/pkg/modelregistry"
	"github.com/bitechdev/QuerySpec/pkg/queryspec"
	"github.com/bitechdev/QuerySpec/pkg/reflection"
)

// ConfigureFunc sets up the template pipeline of an endpoint.
type ConfigureFunc func(p *queryspec.Pipeline)

type endpoint struct {
	model    interface{}
	template *queryspec.Pipeline
}

// Handler dispatches list and metadata requests to registered entities.
type Handler struct {
	db       common.Database
	cfg      config.Config
	registry *modelregistry.DefaultModelRegistry

	mu        sync.RWMutex
	endpoints map[string]*endpoint
}

// NewHandler creates a handler over db. Pipelines start from cfg.
func NewHandler(db common.Database, cfg config.Config) *Handler {
	return &Handler{
		db:        db,
		cfg:       cfg,
		registry:  modelregistry.NewModelRegistry(),
		endpoints: make(map[string]*endpoint),
	}
}

// NewHandlerWithGORM creates a handler with the GORM adapter.
func NewHandlerWithGORM(db *gorm.DB, cfg config.Config) *Handler {
	return NewHandler(database.NewGormAdapter(db), cfg)
}

// NewHandlerWithBun creates a handler with the Bun adapter.
func NewHandlerWithBun(db *bun.DB, cfg config.Config) *Handler {
	return NewHandler(database.NewBunAdapter(db), cfg)
}

// Register exposes model under name. configure receives the template pipeline
// and may be nil. Search columns the model does not declare are dropped with
// a warning; unknown sortable columns are only reported.
func (h *Handler) Register(name string, model interface{}, configure ConfigureFunc) error {
	if err := h.registry.RegisterModel(name, model); err != nil {
		return fmt.Errorf("failed to register %s: %w", name, err)
	}

	template := queryspec.NewWithConfig(h.cfg).SetQuery(h.db.NewSelect().Model(reflection.NewModel(model)))
	if configure != nil {
		configure(template)
	}

	snapshot := template.Snapshot()
	validator := reflection.NewColumnValidator(model)
	if valid := validator.FilterValidColumns(snapshot.SearchColumns); len(valid) != len(snapshot.SearchColumns) {
		template.Searchable(valid...)
	}
	if err := validator.ValidateColumns(snapshot.SortableColumns); err != nil {
		logger.Warn("Entity %s: %v", name, err)
	}

	h.mu.Lock()
	h.endpoints[modelKey(name)] = &endpoint{model: model, template: template}
	h.mu.Unlock()

	logger.Info("Registered list endpoint %s (table %s)", name, reflection.GetTableName(model))
	return nil
}

// Entities lists the registered entity names.
func (h *Handler) Entities() []string {
	return h.registry.Names()
}

func (h *Handler) lookup(entity string) (*endpoint, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ep, ok := h.endpoints[modelKey(entity)]
	return ep, ok
}

func modelKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ListResponse is the body of a list request.
type ListResponse struct {
	common.Response
	Query      queryspec.Snapshot           `json:"query"`
	SortParams map[string]map[string]string `json:"sort_params"`
	PerPage    []int                        `json:"per_page_options"`
}

// HandleList runs the entity's pipeline against the request's query string
// and writes one page of rows.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request, entity string) {
	defer func() {
		if err := recover(); err != nil {
			h.handlePanic(w, "HandleList", err)
		}
	}()

	ep, ok := h.lookup(entity)
	if !ok {
		logger.Error("Invalid entity: %s", entity)
		h.sendError(w, http.StatusNotFound, "invalid_entity", "Invalid entity", fmt.Errorf("unknown entity %s", entity))
		return
	}

	p := ep.template.Clone().FromRawInput(queryspec.InputFromValues(r.URL.Query()))

	dest := reflection.NewModelSlice(ep.model)
	page, err := p.Paginate(r.Context(), dest, 0)
	if err != nil {
		logger.Error("Error listing %s: %v", entity, err)
		h.sendError(w, http.StatusInternalServerError, "query_error", "Error executing query", err)
		return
	}

	snapshot := p.Snapshot()
	sortParams := make(map[string]map[string]string, len(snapshot.SortableColumns))
	for _, column := range snapshot.SortableColumns {
		if p.IsSortable(column) {
			sortParams[column] = p.SortParams(column)
		}
	}

	logger.Debug("Listed %s: page %d of %d, %d total", entity, page.CurrentPage, page.LastPage, page.Total)
	h.sendJSON(w, http.StatusOK, ListResponse{
		Response: common.Response{
			Success:  true,
			Data:     dest,
			Metadata: page.Metadata(reflection.Len(dest)),
		},
		Query:      snapshot,
		SortParams: sortParams,
		PerPage:    page.PerPageOptions,
	})
}

// EntityMetadata describes a registered entity and its list configuration.
type EntityMetadata struct {
	Entity     string             `json:"entity"`
	Table      string             `json:"table"`
	PrimaryKey string             `json:"primary_key"`
	Columns    []string           `json:"columns"`
	Query      queryspec.Snapshot `json:"query"`
}

// HandleMeta writes the entity's columns and template configuration.
func (h *Handler) HandleMeta(w http.ResponseWriter, r *http.Request, entity string) {
	defer func() {
		if err := recover(); err != nil {
			h.handlePanic(w, "HandleMeta", err)
		}
	}()

	ep, ok := h.lookup(entity)
	if !ok {
		logger.Error("Invalid entity: %s", entity)
		h.sendError(w, http.StatusNotFound, "invalid_entity", "Invalid entity", fmt.Errorf("unknown entity %s", entity))
		return
	}

	columns := reflection.GetModelColumns(ep.model)
	sort.Strings(columns)

	h.sendJSON(w, http.StatusOK, common.Response{
		Success: true,
		Data: EntityMetadata{
			Entity:     entity,
			Table:      reflection.GetTableName(ep.model),
			PrimaryKey: reflection.GetPrimaryKeyName(ep.model),
			Columns:    columns,
			Query:      ep.template.Snapshot(),
		},
	})
}

// handlePanic logs the stack and answers 500.
func (h *Handler) handlePanic(w http.ResponseWriter, method string, err interface{}) {
	stack := debug.Stack()
	logger.Error("Panic in %s: %v\nStack trace:\n%s", method, err, string(stack))
	h.sendError(w, http.StatusInternalServerError, "internal_error", fmt.Sprintf("Internal server error in %s", method), fmt.Errorf("%v", err))
}

func (h *Handler) sendJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Error sending response: %v", err)
	}
}

func (h *Handler) sendError(w http.ResponseWriter, status int, code, message string, err error) {
	apiErr := &common.APIError{Code: code, Message: message}
	if err != nil {
		apiErr.Detail = err.Error()
	}
	h.sendJSON(w, status, common.Response{Success: false, Error: apiErr})
}
