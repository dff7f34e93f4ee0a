package log

// FieldComponent labels every record with the process area that emitted it.
const FieldComponent = "component"

// Component names used by the binaries when they set up their logger.
const (
	ComponentApp      = "app"
	ComponentWorker   = "worker"
	ComponentReminder = "reminder"
	ComponentMenu     = "menu"
)
