package models

// CallbackAction type of callback action
type CallbackAction string

const (
	CallbackClearConfirm CallbackAction = "cc"
	CallbackClearCancel  CallbackAction = "cx"
)

// CallbackData structure for inline button callback
type CallbackData struct {
	Action CallbackAction `json:"a"`
	UserID int64          `json:"u"` // User who requested the action
}
