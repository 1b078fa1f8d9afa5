package panel

import (
	"context"
	"sync"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/coursepanel/core"
	"github.com/trezcool/coursepanel/core/llm"
	"github.com/trezcool/coursepanel/core/session"
)

const (
	msgSaveSuccess  = "LLM Model updated successfully"
	msgSaveFailed   = "Failed to update LLM model"
	msgSaveError    = "Error updating LLM model"
	msgLoadFallback = "Could not load the course's LLM model; showing the default model"
)

var (
	ErrBusy          = errors.New("another model configuration request is in flight")
	ErrNotReady      = errors.New("model configuration is not loaded")
	ErrAlreadyLoaded = errors.New("model configuration is already loaded")
	ErrClosed        = errors.New("model configuration view was closed")
)

// State of a ModelController.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateSaving:
		return "saving"
	default:
		return "unknown"
	}
}

type (
	// ConfigStore is the remote store of per-course configuration.
	// GetModel returns "" when the course has no model set.
	ConfigStore interface {
		GetModel(ctx context.Context, token, courseID string) (string, error)
		UpdateModel(ctx context.Context, token, courseID, instructorEmail, modelID string) error
	}

	SelectedModelConfig struct {
		CourseID   string
		LLMModelID string
	}

	// Snapshot is a consistent view of a ModelController's state.
	Snapshot struct {
		State     State
		Confirmed SelectedModelConfig
		Pending   string
		LastError string // reason of the last failed save; cleared by a successful one
	}

	ModelControllerDeps struct {
		Store       ConfigStore
		Credentials session.Provider
		Catalog     *llm.Catalog
		Notifier    Notifier
		Logger      core.Logger
	}

	// ModelController loads and saves the model selection of one course.
	// At most one remote call is in flight per controller.
	ModelController struct {
		deps     ModelControllerDeps
		courseID string

		mu        sync.Mutex
		state     State
		confirmed string
		pending   string
		lastErr   string
		closed    bool
	}
)

// Dirty reports whether the pending selection differs from the confirmed one.
func (s Snapshot) Dirty() bool { return s.State != StateIdle && s.Pending != s.Confirmed.LLMModelID }

func NewModelController(courseID string, deps ModelControllerDeps) (*ModelController, error) {
	courseID = core.CleanString(courseID)
	err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(courseID, "courseID"),
		core.NotNil(deps.Store, "deps.Store"),
		core.NotNil(deps.Credentials, "deps.Credentials"),
		core.NotNil(deps.Catalog, "deps.Catalog"),
		core.NotNil(deps.Notifier, "deps.Notifier"),
		core.NotNil(deps.Logger, "deps.Logger"),
	).Check()
	if err != nil {
		return nil, core.NewInvalidArgumentError("deps", courseID, err.Error())
	}

	return &ModelController{deps: deps, courseID: courseID}, nil
}

func (c *ModelController) CourseID() string { return c.courseID }

func (c *ModelController) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *ModelController) snapshot() Snapshot {
	return Snapshot{
		State:     c.state,
		Confirmed: SelectedModelConfig{CourseID: c.courseID, LLMModelID: c.confirmed},
		Pending:   c.pending,
		LastError: c.lastErr,
	}
}

// begin moves the controller to the in-flight state `to`, provided it currently is in `from`.
func (c *ModelController) begin(from, to State) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.closed:
		return ErrClosed
	case c.state == StateLoading || c.state == StateSaving:
		return ErrBusy
	case c.state != from:
		if from == StateIdle {
			return ErrAlreadyLoaded
		}
		return ErrNotReady
	}
	c.state = to
	return nil
}

// Load fetches the course's model selection.
// Failures are logged and fall back to the catalog's default model; the controller always ends up Ready.
func (c *ModelController) Load(ctx context.Context) error {
	if err := c.begin(StateIdle, StateLoading); err != nil {
		return err
	}

	raw, err := c.fetch(ctx)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	resolved := c.deps.Catalog.Resolve(raw)
	c.confirmed = resolved
	c.pending = resolved
	c.state = StateReady
	c.mu.Unlock()

	fields := map[string]interface{}{"course_id": c.courseID}
	stored := core.CleanString(raw)
	switch {
	case err != nil:
		c.deps.Logger.Error("loading LLM model", err, fields)
		c.deps.Notifier.NotifyWarning(msgLoadFallback)
	case stored != "" && stored != resolved:
		fields["llm_model_id"] = raw
		c.deps.Logger.Warn("unrecognized LLM model, using default", fields)
	}
	return nil
}

func (c *ModelController) fetch(ctx context.Context) (string, error) {
	cred, err := session.Acquire(ctx, c.deps.Credentials)
	if err != nil {
		return "", err
	}
	raw, err := c.deps.Store.GetModel(ctx, cred.Token, c.courseID)
	if err != nil {
		return "", errors.Wrap(err, "fetching LLM model")
	}
	return raw, nil
}

// SetPending changes the unsaved selection. Only catalog ids are accepted.
func (c *ModelController) SetPending(modelID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.closed:
		return ErrClosed
	case c.state == StateLoading || c.state == StateSaving:
		return ErrBusy
	case c.state != StateReady:
		return ErrNotReady
	}
	if err := c.deps.Catalog.Check(modelID); err != nil {
		return err
	}
	c.pending = modelID
	return nil
}

// Save persists the pending selection. On failure the pending edit is kept so the user can retry.
func (c *ModelController) Save(ctx context.Context) error {
	if err := c.begin(StateReady, StateSaving); err != nil {
		return err
	}

	c.mu.Lock()
	pending := c.pending
	c.mu.Unlock()

	err := c.push(ctx, pending)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.state = StateReady
	if err == nil {
		c.confirmed = pending
		c.lastErr = ""
	} else {
		c.lastErr = saveFailureMessage(err)
	}
	lastErr := c.lastErr
	c.mu.Unlock()

	if err != nil {
		c.deps.Logger.Error("updating LLM model", err, map[string]interface{}{
			"course_id":    c.courseID,
			"llm_model_id": pending,
		})
		c.deps.Notifier.NotifyError(lastErr)
		return err
	}
	c.deps.Notifier.NotifySuccess(msgSaveSuccess)
	return nil
}

func (c *ModelController) push(ctx context.Context, modelID string) error {
	cred, err := session.Acquire(ctx, c.deps.Credentials)
	if err != nil {
		return err
	}
	if err = c.deps.Store.UpdateModel(ctx, cred.Token, c.courseID, cred.Email, modelID); err != nil {
		return errors.Wrap(err, "updating LLM model")
	}
	return nil
}

// Close discards the controller's state; responses of in-flight calls are dropped.
func (c *ModelController) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func saveFailureMessage(err error) string {
	if rerr, ok := core.AsRemoteError(err); ok {
		if rerr.Message != "" {
			return msgSaveFailed + ": " + rerr.StatusText() + " (" + rerr.Message + ")"
		}
		return msgSaveFailed + ": " + rerr.StatusText()
	}
	if core.IsAuthFailure(err) {
		return msgSaveError + ": not authenticated"
	}
	return msgSaveError
}
