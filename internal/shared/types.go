package shared

// Task types
const (
	TypeBookingNotifyCreated = "booking:notify_created"
)

// Queues
const (
	QueueCritical     = "critical"
	QueueDefault      = "default"
	QueueNotification = "notification"
)

// QueuePriorities is the weighted queue config of the worker server.
var QueuePriorities = map[string]int{
	QueueCritical:     6,
	QueueNotification: 3,
	QueueDefault:      1,
}

// Context keys set by middleware
const (
	ContextKeyRequestID    = "request_id"
	ContextKeyAdminSession = "admin_session"
	ContextKeyClientIP     = "client_ip"
)
