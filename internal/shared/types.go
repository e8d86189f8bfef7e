package shared

// Task type names registered with the worker
const (
	TypeFinalizeAuction       = "auction:finalize"
	TypeCloseEndedAuctions    = "auction:close_ended"
	TypeOpenScheduledAuctions = "auction:open_scheduled"
)

// Queue names. Priorities are configured on the worker server.
const (
	QueueHigh    = "high"
	QueueDefault = "default"
	QueueLow     = "low"
)
