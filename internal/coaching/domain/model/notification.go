package model

// Notification types
const (
	NotificationDocument    = "document"
	NotificationAppointment = "appointment"
	NotificationGoal        = "goal"
	NotificationMessage     = "message"
	NotificationSystem      = "system"
)

var notificationLabels = map[string]string{
	NotificationDocument:    "New document",
	NotificationAppointment: "Appointment",
	NotificationGoal:        "Goal update",
	NotificationMessage:     "New message",
	NotificationSystem:      "Notice",
}

// NotificationLabel is the human label used in email subjects. Unknown types read
// as the system label.
func NotificationLabel(notificationType string) string {
	if label, ok := notificationLabels[notificationType]; ok {
		return label
	}
	return notificationLabels[NotificationSystem]
}

// Notification is an in-app message for a portal user.
type Notification struct {
	ID        string `json:"id" bson:"id"`
	UserID    string `json:"userId" bson:"userId"`
	Title     string `json:"title" bson:"title"`
	Message   string `json:"message" bson:"message"`
	Type      string `json:"type" bson:"type"`
	Link      string `json:"link,omitempty" bson:"link,omitempty"`
	Read      bool   `json:"read" bson:"read"`
	CreatedAt string `json:"createdAt" bson:"createdAt"`
}
