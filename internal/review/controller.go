// Package review drives the guided review: a step-by-step walk over the
// profile sections with staged edits, AI suggestions and a highlight that
// follows the section under review in the hosted document.
package review

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/profile-studio/internal/highlight"
	"github.com/jonathan/profile-studio/internal/profile"
	"github.com/jonathan/profile-studio/internal/sections"
)

// State is the controller's position in the review state machine.
type State string

const (
	StateIdle               State = "idle"
	StateTransitionForward  State = "transitioning_forward"
	StateTransitionBackward State = "transitioning_backward"
	StateCompleted          State = "completed"
)

// Timing holds the fixed delays of a step change.
type Timing struct {
	// Transition is the card animation between steps.
	Transition time.Duration
	// Debounce blocks navigation for this long after each accepted request.
	Debounce time.Duration
	// ScrollDelay and RevealDelay are measured from the moment a step settles.
	ScrollDelay time.Duration
	RevealDelay time.Duration
}

// DefaultTiming matches the overlay animations.
func DefaultTiming() Timing {
	return Timing{
		Transition:  300 * time.Millisecond,
		Debounce:    500 * time.Millisecond,
		ScrollDelay: 80 * time.Millisecond,
		RevealDelay: 350 * time.Millisecond,
	}
}

// Enhancer produces AI suggestions for a section.
type Enhancer interface {
	Enhance(ctx context.Context, sectionID string, current profile.Data, instructions string) (profile.Partial, error)
}

// Highlighter is the part of highlight.Tracker the controller drives.
type Highlighter interface {
	SetTarget(selector string)
	Hide()
	Show()
	ScrollTo(ctx context.Context, scrollSelector string) error
	Current() highlight.Spotlight
}

// Options configures a Controller. Every field is optional.
type Options struct {
	Timing    Timing
	Highlight Highlighter
	Enhancer  Enhancer
	// OnComplete runs once when the review finishes or is skipped.
	OnComplete func()
	// OnChange receives the view after every state change. It runs without
	// the controller's lock held and may call back into the controller.
	OnChange func(View)
}

// Controller owns the review state for one session. All methods are safe for
// concurrent use.
//
// Profile writes happen while the controller's lock is held, so store
// subscribers must not call back into the controller synchronously.
type Controller struct {
	sections   *sections.Registry
	store      *profile.Store
	timing     Timing
	hl         Highlighter
	enhancer   Enhancer
	onComplete func()
	onChange   func(View)

	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	step          int
	state         State
	localEdits    profile.Partial
	suggestion    *profile.Partial
	instructions  string
	enhancing     bool
	enhanceErr    string
	cancelEnhance context.CancelFunc
	// gen changes whenever the current step is left; async work started
	// under an older gen is discarded.
	gen       uint64
	navLocked bool
	drag      dragState
	timers    map[uint64]*time.Timer
	nextTimer uint64
	closed    bool
}

// New creates a controller at step 0 over reg, writing into store.
func New(reg *sections.Registry, store *profile.Store, opts Options) *Controller {
	t := opts.Timing
	def := DefaultTiming()
	if t.Transition <= 0 {
		t.Transition = def.Transition
	}
	if t.Debounce <= 0 {
		t.Debounce = def.Debounce
	}
	if t.ScrollDelay <= 0 {
		t.ScrollDelay = def.ScrollDelay
	}
	if t.RevealDelay <= 0 {
		t.RevealDelay = def.RevealDelay
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		sections:   reg,
		store:      store,
		timing:     t,
		hl:         opts.Highlight,
		enhancer:   opts.Enhancer,
		onComplete: opts.OnComplete,
		onChange:   opts.OnChange,
		ctx:        ctx,
		cancel:     cancel,
		state:      StateIdle,
		timers:     make(map[uint64]*time.Timer),
	}
}

// Start runs the step-entry sequence for the first step. Call it once the
// hosted document holds the rendered profile.
func (c *Controller) Start() {
	c.mu.Lock()
	gen, sec := c.gen, c.sections.At(c.step)
	c.mu.Unlock()
	c.enterStep(gen, sec)
	c.changed()
}

// Next commits the current step's edits and advances. On the last step it
// completes the review. It reports whether the request was accepted.
func (c *Controller) Next() bool {
	c.mu.Lock()
	if !c.canNavigateLocked() {
		c.mu.Unlock()
		return false
	}
	c.lockNavLocked()
	c.commitLocked()

	if c.step == c.sections.Len()-1 {
		c.completeLocked()
		c.mu.Unlock()
		c.finish()
		return true
	}

	c.state = StateTransitionForward
	c.scheduleSettleLocked(+1)
	c.mu.Unlock()
	c.changed()
	return true
}

// Prev commits the current step's edits and moves back one step. It is a
// no-op on the first step.
func (c *Controller) Prev() bool {
	c.mu.Lock()
	if !c.canNavigateLocked() || c.step == 0 {
		c.mu.Unlock()
		return false
	}
	c.lockNavLocked()
	c.commitLocked()
	c.state = StateTransitionBackward
	c.scheduleSettleLocked(-1)
	c.mu.Unlock()
	c.changed()
	return true
}

// SkipAll completes the review immediately without committing pending edits.
func (c *Controller) SkipAll() bool {
	c.mu.Lock()
	if c.state == StateCompleted {
		c.mu.Unlock()
		return false
	}
	c.localEdits = profile.Partial{}
	c.completeLocked()
	c.mu.Unlock()
	c.finish()
	return true
}

// HandleKey maps a key press to navigation. Keys pressed while focus is in
// a text field are ignored.
func (c *Controller) HandleKey(key, focusTag string) bool {
	switch strings.ToUpper(focusTag) {
	case "INPUT", "TEXTAREA":
		return false
	}
	switch key {
	case "Escape":
		return c.SkipAll()
	case "ArrowRight":
		return c.Next()
	case "ArrowLeft":
		return c.Prev()
	}
	return false
}

func (c *Controller) canNavigateLocked() bool {
	return c.state == StateIdle && !c.navLocked && !c.closed
}

func (c *Controller) lockNavLocked() {
	c.navLocked = true
	c.afterLocked(c.timing.Debounce, func() {
		c.mu.Lock()
		c.navLocked = false
		c.mu.Unlock()
	})
}

func (c *Controller) commitLocked() {
	if !c.localEdits.IsEmpty() {
		c.store.Merge(c.localEdits)
	}
	c.localEdits = profile.Partial{}
}

func (c *Controller) scheduleSettleLocked(delta int) {
	gen := c.gen
	c.afterLocked(c.timing.Transition, func() { c.settle(gen, delta) })
}

func (c *Controller) settle(gen uint64, delta int) {
	c.mu.Lock()
	if c.gen != gen || (c.state != StateTransitionForward && c.state != StateTransitionBackward) {
		c.mu.Unlock()
		return
	}
	c.step += delta
	c.state = StateIdle
	c.leaveStepLocked()
	gen, sec := c.gen, c.sections.At(c.step)
	c.mu.Unlock()

	c.enterStep(gen, sec)
	c.changed()
}

// leaveStepLocked drops everything scoped to the step being left.
func (c *Controller) leaveStepLocked() {
	c.gen++
	c.localEdits = profile.Partial{}
	c.suggestion = nil
	c.instructions = ""
	c.enhanceErr = ""
	c.enhancing = false
	if c.cancelEnhance != nil {
		c.cancelEnhance()
		c.cancelEnhance = nil
	}
}

func (c *Controller) completeLocked() {
	c.state = StateCompleted
	c.leaveStepLocked()
	c.drag.dragging = false
}

func (c *Controller) finish() {
	if c.hl != nil {
		c.hl.Hide()
	}
	log.Printf("[REVIEW] review completed")
	if c.onComplete != nil {
		c.onComplete()
	}
	c.changed()
}

// enterStep hides the highlight, retargets it, scrolls the section into view
// and shows the highlight again, each after its delay.
func (c *Controller) enterStep(gen uint64, sec sections.Section) {
	if c.hl == nil {
		return
	}
	c.hl.Hide()
	c.hl.SetTarget(sec.Selector)

	c.after(c.timing.ScrollDelay, func() {
		if !c.isCurrent(gen) {
			return
		}
		if err := c.hl.ScrollTo(c.ctx, sec.ScrollTarget()); err != nil && c.ctx.Err() == nil {
			log.Printf("[REVIEW] scrolling to %s failed: %v", sec.ID, err)
		}
	})
	c.after(c.timing.RevealDelay, func() {
		if !c.isCurrent(gen) {
			return
		}
		c.hl.Show()
		c.changed()
	})
}

func (c *Controller) isCurrent(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen == gen && c.state != StateCompleted && !c.closed
}

func (c *Controller) after(d time.Duration, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterLocked(d, fn)
}

func (c *Controller) afterLocked(d time.Duration, fn func()) {
	if c.closed {
		return
	}
	id := c.nextTimer
	c.nextTimer++
	c.timers[id] = time.AfterFunc(d, func() {
		c.mu.Lock()
		delete(c.timers, id)
		c.mu.Unlock()
		fn()
	})
}

// SetFieldValue writes u into the step's local edits and straight through
// to the profile store so the preview updates live.
func (c *Controller) SetFieldValue(u profile.Update) error {
	c.mu.Lock()
	if c.state == StateCompleted {
		c.mu.Unlock()
		return ErrCompleted
	}
	c.localEdits = c.localEdits.Overlay(u.Partial())
	c.store.SetField(u)
	c.mu.Unlock()
	c.changed()
	return nil
}

// SetNestedValue sets one key of the socialLinks or contact record.
func (c *Controller) SetNestedValue(parent profile.Field, key, value string) error {
	c.mu.Lock()
	if c.state == StateCompleted {
		c.mu.Unlock()
		return ErrCompleted
	}

	var u profile.Update
	switch parent {
	case profile.FieldSocialLinks:
		links, _ := c.valueLocked(parent).(profile.SocialLinks)
		next, err := links.With(key, value)
		if err != nil {
			c.mu.Unlock()
			return err
		}
		u = profile.SetSocialLinks(next)
	case profile.FieldContact:
		contact, _ := c.valueLocked(parent).(profile.Contact)
		next, err := contact.With(key, value)
		if err != nil {
			c.mu.Unlock()
			return err
		}
		u = profile.SetContact(next)
	default:
		c.mu.Unlock()
		return &profile.FieldError{Field: parent, Key: key, Message: "not a nested field"}
	}

	c.localEdits = c.localEdits.Overlay(u.Partial())
	c.store.SetField(u)
	c.mu.Unlock()
	c.changed()
	return nil
}

// FieldValue returns the local edit for f if there is one, otherwise the
// store's value.
func (c *Controller) FieldValue(f profile.Field) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.valueLocked(f)
}

func (c *Controller) valueLocked(f profile.Field) any {
	if v, ok := c.localEdits.Value(f); ok {
		return v
	}
	return c.store.Get().Value(f)
}

// SetInstructions stores the free-text guidance sent with the next
// enhancement request.
func (c *Controller) SetInstructions(s string) {
	c.mu.Lock()
	c.instructions = s
	c.mu.Unlock()
	c.changed()
}

// Enhance asks the gateway for a suggestion for the current section and
// stages it. Only one request runs at a time. A result that arrives after
// the step changed is dropped and Enhance returns nil, nil. An empty result
// stages nothing.
func (c *Controller) Enhance(ctx context.Context) (*profile.Partial, error) {
	c.mu.Lock()
	switch {
	case c.state == StateCompleted:
		c.mu.Unlock()
		return nil, ErrCompleted
	case c.enhancer == nil:
		c.mu.Unlock()
		return nil, ErrNoEnhancer
	case c.enhancing:
		c.mu.Unlock()
		return nil, ErrEnhanceInProgress
	}
	c.enhancing = true
	c.enhanceErr = ""
	gen := c.gen
	sec := c.sections.At(c.step)
	current := c.store.Get().With(c.localEdits)
	instructions := c.instructions
	ectx, cancel := context.WithCancel(ctx)
	c.cancelEnhance = cancel
	c.mu.Unlock()
	c.changed()

	result, err := c.enhancer.Enhance(ectx, sec.ID, current, instructions)
	cancel()

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		log.Printf("[REVIEW] dropping suggestion for %s: step changed", sec.ID)
		return nil, nil
	}
	c.enhancing = false
	c.cancelEnhance = nil
	if err != nil {
		eerr := &EnhancementError{Section: sec.ID, Message: "gateway request failed", Cause: err}
		c.enhanceErr = eerr.Error()
		c.mu.Unlock()
		log.Printf("[REVIEW] %v", eerr)
		c.changed()
		return nil, eerr
	}
	if result.IsEmpty() {
		c.mu.Unlock()
		c.changed()
		return nil, nil
	}
	c.suggestion = &result
	c.mu.Unlock()

	c.changed()
	staged := result
	return &staged, nil
}

// AcceptSuggestion merges the staged suggestion into the store and clears
// it. Local edits to the same fields take the suggested values so the next
// commit does not undo the acceptance.
func (c *Controller) AcceptSuggestion() bool {
	c.mu.Lock()
	if c.suggestion == nil {
		c.mu.Unlock()
		return false
	}
	s := *c.suggestion
	c.suggestion = nil
	c.store.Merge(s)
	c.localEdits = c.localEdits.Overlay(s.Restrict(c.localEdits.Fields()))
	c.mu.Unlock()
	c.changed()
	return true
}

// RejectSuggestion discards the staged suggestion.
func (c *Controller) RejectSuggestion() bool {
	c.mu.Lock()
	had := c.suggestion != nil
	c.suggestion = nil
	c.mu.Unlock()
	if had {
		c.changed()
	}
	return had
}

// Step returns the current step index.
func (c *Controller) Step() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) changed() {
	if c.onChange != nil {
		c.onChange(c.View())
	}
}

// Close stops pending timers and any outstanding enhancement.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
	if c.cancelEnhance != nil {
		c.cancelEnhance()
		c.cancelEnhance = nil
	}
	c.mu.Unlock()
	c.cancel()
}
