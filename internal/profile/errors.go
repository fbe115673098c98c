package profile

import "fmt"

// FieldError reports a write that does not fit the shape of a field.
type FieldError struct {
	Field   Field
	Key     string
	Message string
	Cause   error
}

func (e *FieldError) Error() string {
	name := string(e.Field)
	if e.Key != "" {
		name += "." + e.Key
	}
	if e.Cause != nil {
		return fmt.Sprintf("profile field %s: %s: %v", name, e.Message, e.Cause)
	}
	return fmt.Sprintf("profile field %s: %s", name, e.Message)
}

func (e *FieldError) Unwrap() error {
	return e.Cause
}
