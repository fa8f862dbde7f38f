package logger

// Logger is the logging interface shared by all components. The first
// argument tags the emitting component so log streams from the dispatcher,
// the websocket server and the loader can be told apart.
type Logger interface {
	Debug(component, message string, fields map[string]interface{})
	Info(component, message string, fields map[string]interface{})
	Warning(component, message string, fields map[string]interface{})
	Error(component string, err error, fields map[string]interface{})
}
