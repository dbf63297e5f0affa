package core

// Logger logs messages along with any context args (errors, maps, a Person).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Person identifies the logged-in user an error report is attached to.
type Person struct {
	ID       string
	Username string
	Email    string
}
