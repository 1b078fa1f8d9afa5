// Package llm holds the static catalog of language models a course can be configured with.
package llm

import (
	"github.com/trezcool/coursepanel/core"
)

// Model identifiers known to the catalog.
const (
	ModelLlama3_70BInstruct = "meta.llama3-70b-instruct-v1:0"
	ModelLlama3_8BInstruct  = "meta.llama3-8b-instruct-v1:0"
	ModelClaude3Sonnet      = "anthropic.claude-3-sonnet-20240229-v1:0"
	ModelClaude3Haiku       = "anthropic.claude-3-haiku-20240307-v1:0"

	DefaultModelID = ModelLlama3_70BInstruct
)

// Default is the catalog shipped with the application.
var Default = MustCatalog(
	DefaultModelID,
	Descriptor{
		ID:          ModelLlama3_70BInstruct,
		Name:        "Llama 3 70B Instruct",
		Description: "Best for complex reasoning and detailed responses",
	},
	Descriptor{
		ID:          ModelLlama3_8BInstruct,
		Name:        "Llama 3 8B Instruct",
		Description: "Faster responses, good for general conversations",
	},
	Descriptor{
		ID:          ModelClaude3Sonnet,
		Name:        "Claude 3 Sonnet",
		Description: "Balanced performance and speed",
	},
	Descriptor{
		ID:          ModelClaude3Haiku,
		Name:        "Claude 3 Haiku",
		Description: "Fastest responses, good for simple tasks",
	},
)

// Descriptor describes a selectable model. Only ID is ever stored remotely.
type Descriptor struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Catalog is an immutable, ordered set of model descriptors with one default.
type Catalog struct {
	models    []Descriptor
	index     map[string]int
	defaultID string
}

// NewCatalog builds a catalog; insertion order is display order.
func NewCatalog(defaultID string, models ...Descriptor) (*Catalog, error) {
	if len(models) == 0 {
		return nil, core.NewInvalidArgumentError("models", "", "catalog cannot be empty")
	}

	c := &Catalog{
		models:    make([]Descriptor, 0, len(models)),
		index:     make(map[string]int, len(models)),
		defaultID: defaultID,
	}
	for _, m := range models {
		if m.ID == "" {
			return nil, core.NewInvalidArgumentError("id", m.ID, "model id cannot be empty")
		}
		if _, dup := c.index[m.ID]; dup {
			return nil, core.NewInvalidArgumentError("id", m.ID, "duplicate model id")
		}
		c.index[m.ID] = len(c.models)
		c.models = append(c.models, m)
	}
	if !c.Has(defaultID) {
		return nil, core.NewInvalidArgumentError("defaultID", defaultID, "default model is not in the catalog")
	}
	return c, nil
}

// MustCatalog is like NewCatalog but panics on error.
func MustCatalog(defaultID string, models ...Descriptor) *Catalog {
	c, err := NewCatalog(defaultID, models...)
	if err != nil {
		panic(err)
	}
	return c
}

// List returns the descriptors in display order. The returned slice is a copy.
func (c *Catalog) List() []Descriptor {
	models := make([]Descriptor, len(c.models))
	copy(models, c.models)
	return models
}

// IDs returns the model ids in display order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.models))
	for _, m := range c.models {
		ids = append(ids, m.ID)
	}
	return ids
}

func (c *Catalog) DefaultID() string { return c.defaultID }

func (c *Catalog) Has(id string) bool {
	_, ok := c.index[id]
	return ok
}

func (c *Catalog) Get(id string) (Descriptor, bool) {
	if i, ok := c.index[id]; ok {
		return c.models[i], true
	}
	return Descriptor{}, false
}

// Resolve maps a raw remote value to a valid model id.
// Absent or unrecognized values resolve to the default model.
func (c *Catalog) Resolve(raw string) string {
	if id := core.CleanString(raw); c.Has(id) {
		return id
	}
	return c.defaultID
}

// Check returns an InvalidArgument error if id is not part of the catalog.
func (c *Catalog) Check(id string) error {
	if !c.Has(id) {
		return core.NewInvalidArgumentError("llm_model_id", id, "unknown LLM model")
	}
	return nil
}
