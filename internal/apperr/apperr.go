// Package apperr defines the error value surfaced to the application layer
package apperr

// ApplicationError is a user-facing error with a title and a best-effort description.
type ApplicationError struct {
	Title       string
	Description string
}

// New creates an ApplicationError.
func New(title, description string) *ApplicationError {
	return &ApplicationError{Title: title, Description: description}
}

func (e *ApplicationError) Error() string {
	return e.Title + " : " + e.Description
}

// DisplayDescription returns the description, or "Unknown Error" when it is empty.
func (e *ApplicationError) DisplayDescription() string {
	if e.Description == "" {
		return "Unknown Error"
	}
	return e.Description
}
