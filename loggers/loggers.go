package loggers

import (
	"io"
	"sync"

	log "github.com/sirupsen/logrus"
)

// ThreadSafeWriter a struct that implements io.Writer in a threadsafe way
type ThreadSafeWriter struct {
	Writer io.Writer
	Mutex  *sync.Mutex
}

// Write writes p bytes with the mutex
func (w ThreadSafeWriter) Write(p []byte) (n int, err error) {
	w.Mutex.Lock()
	defer w.Mutex.Unlock()
	return w.Writer.Write(p)
}

// MakeLogger returns a JSON-formatted logger whose output writer is
// synchronized, so composers and clients running on multiple goroutines can
// share it.
func MakeLogger(level log.Level, writer io.Writer) *log.Logger {
	logger := log.New()
	logger.SetFormatter(&log.JSONFormatter{
		DisableHTMLEscape: true,
	})
	logger.SetLevel(level)
	logger.SetOutput(ThreadSafeWriter{
		Writer: writer,
		Mutex:  &sync.Mutex{},
	})
	return logger
}
