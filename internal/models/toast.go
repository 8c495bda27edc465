package models

// ToastLevel is the severity of a user notification.
type ToastLevel string

const (
	ToastSuccess ToastLevel = "success"
	ToastError   ToastLevel = "error"
	ToastInfo    ToastLevel = "info"
)

// Toast is a short user-facing notification.
type Toast struct {
	Level       ToastLevel `json:"level"`
	Message     string     `json:"message"`
	Description string     `json:"description,omitempty"`
}

// Change kinds reported for notes.
const (
	NoteCreated = "created"
	NoteUpdated = "updated"
	NoteDeleted = "deleted"
)
