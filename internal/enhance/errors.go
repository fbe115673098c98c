package enhance

import "fmt"

// ResponseError is returned when the model's reply cannot be turned into a
// usable value. Raw holds the reply as received.
type ResponseError struct {
	Message string
	Raw     string
	Cause   error
}

func (e *ResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("unusable model response: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("unusable model response: %s", e.Message)
}

func (e *ResponseError) Unwrap() error {
	return e.Cause
}

// InputError reports a request that was rejected before calling the model.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
