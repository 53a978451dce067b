// Package logger 各阶段共用的结构化日志, 按组件名输出字段
package logger

// Logger provides structured logging with context.
// Warning is used for recoverable conditions such as overwritten outputs.
type Logger interface {
	Info(component, message string, fields map[string]interface{})
	Error(component string, err error, fields map[string]interface{})
	Warning(component, message string, fields map[string]interface{})
	Debug(component, message string, fields map[string]interface{})
}
