package review

import (
	"github.com/jonathan/profile-studio/internal/highlight"
	"github.com/jonathan/profile-studio/internal/host"
	"github.com/jonathan/profile-studio/internal/profile"
	"github.com/jonathan/profile-studio/internal/sections"
)

// SectionView is the part of a section shown on the review card.
type SectionView struct {
	ID          string          `json:"id"`
	Label       string          `json:"label"`
	Description string          `json:"description"`
	EmptyPrompt string          `json:"empty_prompt"`
	Guidance    string          `json:"guidance"`
	Tips        []string        `json:"tips"`
	Examples    []string        `json:"examples,omitempty"`
	Fields      []profile.Field `json:"fields"`
	HasData     bool            `json:"has_data"`
}

// View is a snapshot of the review for rendering.
type View struct {
	Step             int                   `json:"current_step_index"`
	Total            int                   `json:"total_steps"`
	State            State                 `json:"state"`
	Section          SectionView           `json:"section"`
	Values           map[profile.Field]any `json:"values"`
	LocalEdits       profile.Partial       `json:"local_edits"`
	Suggestion       *profile.Partial      `json:"ai_suggestion"`
	Highlight        *host.Rect            `json:"highlight_geometry"`
	HighlightVisible bool                  `json:"highlight_visible"`
	HighlightMode    highlight.Mode        `json:"highlight_mode"`
	Transitioning    bool                  `json:"is_transitioning"`
	Enhancing        bool                  `json:"enhancing"`
	EnhanceError     string                `json:"enhance_error,omitempty"`
	Instructions     string                `json:"instructions"`
	Position         Point                 `json:"position"`
	Dragging         bool                  `json:"dragging"`
	Progress         []sections.Status     `json:"progress"`
}

// View returns the current review snapshot.
func (c *Controller) View() View {
	c.mu.Lock()
	sec := c.sections.At(c.step)
	data := c.store.Get().With(c.localEdits)
	v := View{
		Step:          c.step,
		Total:         c.sections.Len(),
		State:         c.state,
		LocalEdits:    c.localEdits,
		Transitioning: c.state == StateTransitionForward || c.state == StateTransitionBackward,
		Enhancing:     c.enhancing,
		EnhanceError:  c.enhanceErr,
		Instructions:  c.instructions,
		Position:      c.drag.position,
		Dragging:      c.drag.dragging,
	}
	if c.suggestion != nil {
		s := *c.suggestion
		v.Suggestion = &s
	}
	c.mu.Unlock()

	v.Section = SectionView{
		ID:          sec.ID,
		Label:       sec.Label,
		Description: sec.Description,
		EmptyPrompt: sec.EmptyPrompt,
		Guidance:    sec.Guidance,
		Tips:        sec.Tips,
		Examples:    sec.Examples,
		Fields:      sec.Fields,
		HasData:     sec.HasData(data),
	}
	v.Values = make(map[profile.Field]any, len(sec.Fields))
	for _, f := range sec.Fields {
		v.Values[f] = data.Value(f)
	}
	v.Progress = c.sections.Progress(data)

	v.HighlightMode = highlight.ModeDim
	if c.hl != nil {
		spot := c.hl.Current()
		v.Highlight = spot.Rect
		v.HighlightVisible = spot.Visible
		v.HighlightMode = spot.Mode()
	}
	return v
}
