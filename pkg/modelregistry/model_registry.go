package modelregistry

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

var (
	ErrModelNotFound  = errors.New("model not found")
	ErrDuplicateModel = errors.New("model already registered")
	ErrInvalidModel   = errors.New("invalid model")
)

// ModelRegistry resolves entity names to model prototypes.
type ModelRegistry interface {
	GetModel(name string) (interface{}, error)
}

// DefaultModelRegistry implements ModelRegistry interface
type DefaultModelRegistry struct {
	models map[string]interface{}
	mutex  sync.RWMutex
}

// Global default registry instance
var defaultRegistry = NewModelRegistry()

// NewModelRegistry creates a new model registry
func NewModelRegistry() *DefaultModelRegistry {
	return &DefaultModelRegistry{
		models: make(map[string]interface{}),
	}
}

// normalize folds case so "Users" and "users" name the same entity.
func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (r *DefaultModelRegistry) RegisterModel(name string, model interface{}) error {
	key := normalize(name)
	if key == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidModel)
	}

	modelType := reflect.TypeOf(model)
	if modelType == nil {
		return fmt.Errorf("%w: model cannot be nil", ErrInvalidModel)
	}

	originalType := modelType

	// Unwrap pointers, slices, and arrays to check the underlying type
	for modelType.Kind() == reflect.Ptr || modelType.Kind() == reflect.Slice || modelType.Kind() == reflect.Array {
		modelType = modelType.Elem()
	}

	if modelType.Kind() != reflect.Struct {
		return fmt.Errorf("%w: must be a struct or pointer to struct, got %s", ErrInvalidModel, originalType.String())
	}

	// Store the bare struct value so every lookup hands out the same shape.
	if originalType != modelType {
		model = reflect.New(modelType).Elem().Interface()
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.models[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateModel, name)
	}

	r.models[key] = model
	return nil
}

func (r *DefaultModelRegistry) GetModel(name string) (interface{}, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	model, exists := r.models[normalize(name)]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
	}

	return model, nil
}

// Names returns the registered names in sorted order.
func (r *DefaultModelRegistry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *DefaultModelRegistry) GetAllModels() map[string]interface{} {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make(map[string]interface{}, len(r.models))
	for k, v := range r.models {
		result[k] = v
	}
	return result
}

// Global convenience functions using the default registry

// RegisterModel registers a model with the default global registry
func RegisterModel(model interface{}, name string) error {
	return defaultRegistry.RegisterModel(name, model)
}

// GetModelByName retrieves a model from the default global registry by name
func GetModelByName(name string) (interface{}, error) {
	return defaultRegistry.GetModel(name)
}

// Default returns the global registry.
func Default() *DefaultModelRegistry {
	return defaultRegistry
}
