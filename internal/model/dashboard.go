package model

type DashboardSummary struct {
	Date                string         `json:"date"`
	TodayAppointments   []*Appointment `json:"today_appointments"`
	UpcomingCount       int            `json:"upcoming_count"`
	Lab                 LabStats       `json:"lab"`
	LowStockCount       int            `json:"low_stock_count"`
	ExpiringCount       int            `json:"expiring_count"`
	UnreadNotifications int            `json:"unread_notifications"`
	OverdueBills        int            `json:"overdue_bills"`
}
