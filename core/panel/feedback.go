package panel

// Notifier is the user-facing feedback channel. Calls are fire-and-forget.
type Notifier interface {
	NotifySuccess(msg string)
	NotifyError(msg string)
	// NotifyWarning reports a non-blocking problem (eg. a failed load that fell back to defaults).
	NotifyWarning(msg string)
}
