package session

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/atelier-labs/fitroom/internal/generation"
	"github.com/atelier-labs/fitroom/internal/history"
	"github.com/atelier-labs/fitroom/internal/imaging"
	"github.com/atelier-labs/fitroom/internal/models"
	"github.com/atelier-labs/fitroom/internal/store"
)

// Storage keys. A slot set to empty or a history reduced to zero length
// removes its key entirely rather than persisting an empty placeholder.
const (
	KeyModel   = "fitroom:model"
	KeyGarment = "fitroom:garment"
	KeyHistory = "fitroom:history"
	KeyResult  = "fitroom:result"
	KeyPrompt  = "fitroom:prompt"
)

// Precondition failures of Generate, distinct from collaborator failures.
var (
	ErrGenerationInFlight = errors.New("a generation is already in progress")
	ErrSlotsEmpty         = errors.New("both a model image and a garment image are required")
)

// Slot designates one of the two image holding positions.
type Slot string

const (
	SlotModel   Slot = "model"
	SlotGarment Slot = "garment"
)

// Snapshot is the full user-visible session state handed to listeners and
// the host UI: the durable state plus the ephemeral error and in-flight
// flags.
type Snapshot struct {
	models.SessionState
	Err        string `json:"error,omitempty"`
	Generating bool   `json:"generating"`
}

// Controller wires the durable store, ingestion results and the generation
// collaborator into the user-facing workflow. It rehydrates from the store at
// construction and re-persists each mutated field within the mutating call.
type Controller struct {
	mu    sync.Mutex
	store *store.Store
	gen   generation.Generator

	state      models.SessionState
	err        string
	generating bool

	listeners []func(Snapshot)
}

// New rehydrates a controller from st. Missing or malformed persisted values
// fall back to an empty session; rehydration never fails.
func New(st *store.Store, gen generation.Generator) *Controller {
	c := &Controller{store: st, gen: gen}
	c.state.Model = store.Load[*models.NormalizedImage](st, KeyModel, nil)
	c.state.Garment = store.Load[*models.NormalizedImage](st, KeyGarment, nil)
	c.state.History = store.Load[[]models.NormalizedImage](st, KeyHistory, nil)
	c.state.ActiveResult = store.Load[*models.NormalizedImage](st, KeyResult, nil)
	c.state.Prompt = store.Load[string](st, KeyPrompt, "")
	slog.Info("Session rehydrated",
		"has_model", c.state.Model != nil,
		"has_garment", c.state.Garment != nil,
		"has_result", c.state.ActiveResult != nil,
		"history", len(c.state.History))
	return c
}

// Subscribe registers a listener notified with a snapshot after every state
// change, so any host UI layer can bind to the session.
func (c *Controller) Subscribe(fn func(Snapshot)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Snapshot returns the current session snapshot.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{SessionState: c.state.Clone(), Err: c.err, Generating: c.generating}
}

func (c *Controller) notify(s Snapshot) {
	c.mu.Lock()
	listeners := make([]func(Snapshot), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(s)
	}
}

func (c *Controller) slotLocked(slot Slot) (**models.NormalizedImage, string) {
	if slot == SlotGarment {
		return &c.state.Garment, KeyGarment
	}
	return &c.state.Model, KeyModel
}

// SetSlot places an ingested image into a slot. Replacing an occupied slot
// preserves the existing slot id, so slot identity stays stable across
// re-uploads. Clears any prior user-facing error.
func (c *Controller) SetSlot(slot Slot, img models.NormalizedImage) {
	c.mu.Lock()
	target, key := c.slotLocked(slot)
	if *target != nil {
		img.ID = (*target).ID
	}
	*target = &img
	c.err = ""
	store.Save(c.store, key, *target)
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	slog.Info("Slot updated", "slot", slot, "id", img.ID, "aspect", img.Aspect)
	c.notify(snapshot)
}

// ClearSlot empties a slot and erases its persisted key.
func (c *Controller) ClearSlot(slot Slot) {
	c.mu.Lock()
	target, key := c.slotLocked(slot)
	*target = nil
	store.Save(c.store, key, *target)
	snapshot := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snapshot)
}

// OverrideAspect sets a slot image's aspect class by explicit user action,
// independent of the geometry that produced it. The image id is untouched.
func (c *Controller) OverrideAspect(slot Slot, aspect models.Aspect) error {
	if !aspect.Valid() {
		return fmt.Errorf("unknown aspect class: %s", aspect)
	}

	c.mu.Lock()
	target, key := c.slotLocked(slot)
	if *target == nil {
		c.mu.Unlock()
		return fmt.Errorf("%s slot is empty", slot)
	}
	(*target).Aspect = aspect
	store.Save(c.store, key, *target)
	snapshot := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snapshot)
	return nil
}

// SetPrompt stores the free-form custom prompt. An empty prompt erases the
// persisted key.
func (c *Controller) SetPrompt(prompt string) {
	c.mu.Lock()
	c.state.Prompt = prompt
	store.Save(c.store, KeyPrompt, prompt)
	snapshot := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snapshot)
}

// Generate invokes the collaborator with the two slot images. It requires
// both slots occupied and no generation in flight. On success the result
// becomes the active result (forced portrait, non-favorite) and is inserted
// into history; on failure the collaborator's message is surfaced verbatim
// and prior state is left untouched.
func (c *Controller) Generate(ctx context.Context) (*models.NormalizedImage, error) {
	c.mu.Lock()
	if c.generating {
		c.mu.Unlock()
		return nil, ErrGenerationInFlight
	}
	if c.state.Model == nil || c.state.Garment == nil {
		c.mu.Unlock()
		return nil, ErrSlotsEmpty
	}
	model := *c.state.Model
	garment := *c.state.Garment
	prompt := c.state.Prompt
	c.generating = true
	c.err = ""
	snapshot := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snapshot)

	res, err := c.gen.Generate(ctx, model, garment, prompt)

	c.mu.Lock()
	c.generating = false
	if err != nil {
		c.err = err.Error()
		snapshot = c.snapshotLocked()
		c.mu.Unlock()
		slog.Error("Generation failed", "err", err)
		c.notify(snapshot)
		return nil, err
	}

	result := models.NormalizedImage{
		ID:       imaging.NewID(),
		Data:     base64.StdEncoding.EncodeToString(res.Data),
		MimeType: res.MimeType,
		// Generated results are a portrait full-body shot by convention.
		Aspect: models.AspectPortrait,
	}
	c.state.ActiveResult = &result
	c.state.History = history.Insert(c.state.History, result)
	store.Save(c.store, KeyResult, c.state.ActiveResult)
	store.Save(c.store, KeyHistory, c.state.History)
	snapshot = c.snapshotLocked()
	c.mu.Unlock()

	slog.Info("Generation succeeded", "id", result.ID, "mime_type", result.MimeType, "history", len(snapshot.History))
	c.notify(snapshot)
	out := result
	return &out, nil
}

// SelectResult makes the history entry with the given id the active result.
// An unknown id is a silent no-op.
func (c *Controller) SelectResult(id string) {
	c.mu.Lock()
	img := history.Find(c.state.History, id)
	if img == nil {
		c.mu.Unlock()
		return
	}
	c.state.ActiveResult = img
	store.Save(c.store, KeyResult, c.state.ActiveResult)
	snapshot := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snapshot)
}

// ToggleFavorite flips the favorite flag of the matching history entry and
// keeps the active result in step when it is the same image.
func (c *Controller) ToggleFavorite(id string) {
	c.mu.Lock()
	c.state.History = history.ToggleFavorite(c.state.History, id)
	if c.state.ActiveResult != nil && c.state.ActiveResult.ID == id {
		if img := history.Find(c.state.History, id); img != nil {
			c.state.ActiveResult = img
			store.Save(c.store, KeyResult, c.state.ActiveResult)
		}
	}
	store.Save(c.store, KeyHistory, c.state.History)
	snapshot := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snapshot)
}

// HistoryOrder returns the derived display order of the history, recomputed
// from the current favorite flags and ids.
func (c *Controller) HistoryOrder() []models.NormalizedImage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return history.DisplayOrder(c.state.History)
}

// Reset clears every session field and the error state atomically and erases
// all persisted keys.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.state = models.SessionState{}
	c.err = ""
	store.Save(c.store, KeyModel, c.state.Model)
	store.Save(c.store, KeyGarment, c.state.Garment)
	store.Save(c.store, KeyHistory, c.state.History)
	store.Save(c.store, KeyResult, c.state.ActiveResult)
	store.Save(c.store, KeyPrompt, c.state.Prompt)
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	slog.Info("Session cleared")
	c.notify(snapshot)
}
