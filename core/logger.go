package core

// Logger is implemented by the app's log services.
// args may carry errors, extra data (map[string]interface{}) and the acting user.User.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
