// Package logger provides structured logging on top of zerolog.
//
// Loggers are component scoped and take map-based fields:
//
//	log := logger.Get("nio")
//	log.Info("tcp server bound", logger.Fields("address", addr))
//
// The global logger is configured from XNIO_LOG_LEVEL, XNIO_LOG_FORMAT and
// XNIO_LOG_OUTPUT unless Init or SetGlobalLogger is called first.
package logger
