package domain

import "github.com/google/uuid"

// NotificationIntent is a message a workflow step wants delivered to one user
type NotificationIntent struct {
	RecipientID uuid.UUID
	ProjectID   *uuid.UUID
	Category    string
	Title       string
	Message     string
}
