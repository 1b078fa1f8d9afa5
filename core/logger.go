package core

// Logger is the observability channel.
// expected args: error, map[string]interface{} (extra fields), user.User (logged in User)
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
