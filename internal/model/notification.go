package model

import (
	"time"
)

type NotificationPriority string

const (
	NotificationPriorityHigh   NotificationPriority = "high"
	NotificationPriorityMedium NotificationPriority = "medium"
	NotificationPriorityLow    NotificationPriority = "low"
)

type NotificationStatus string

const (
	NotificationStatusUnread   NotificationStatus = "unread"
	NotificationStatusRead     NotificationStatus = "read"
	NotificationStatusArchived NotificationStatus = "archived"
)

type Notification struct {
	Base      `yaml:",inline"`
	Title     string               `json:"title" yaml:"title"`
	Message   string               `json:"message" yaml:"message"`
	Date      time.Time            `json:"date" yaml:"date"`
	Priority  NotificationPriority `json:"priority" yaml:"priority"`
	Status    NotificationStatus   `json:"status" yaml:"status"`
	Link      string               `json:"link,omitempty" yaml:"link"`
	Recipient string               `json:"recipient,omitempty" yaml:"recipient"`
}

type NotificationFilters struct {
	Status string `form:"status"`
}

type CreateNotificationRequest struct {
	Title     string               `json:"title" binding:"required,max=200"`
	Message   string               `json:"message" binding:"required,max=2000"`
	Priority  NotificationPriority `json:"priority" binding:"omitempty,oneof=high medium low"`
	Link      string               `json:"link" binding:"max=500"`
	Recipient string               `json:"recipient" binding:"omitempty,email"`
}
