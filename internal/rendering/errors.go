package rendering

import "fmt"

// TemplateError represents a template that could not be parsed. Ref is the
// template id when known, otherwise a short content hash.
type TemplateError struct {
	Ref     string
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error [%s]: %s: %v", e.Ref, e.Message, e.Cause)
	}
	return fmt.Sprintf("template error [%s]: %s", e.Ref, e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// RenderError represents a parsed template that failed while executing
type RenderError struct {
	Ref     string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render error [%s]: %s: %v", e.Ref, e.Message, e.Cause)
	}
	return fmt.Sprintf("render error [%s]: %s", e.Ref, e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
