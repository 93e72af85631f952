package logger

// Logger is the logging contract consumed by the other packages of this module.
// Every method takes an optional error and any number of structured field maps.
type Logger interface {
	Debug(msg string, err error, fields ...map[string]interface{})
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

var _ Logger = (*LoggerClient)(nil)
