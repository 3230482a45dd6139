package utils

import (
	"io"
	"sync"
)

type flushable interface {
	Flush() error
}

// FlushingWriter forwards writes to a wrapped writer and flushes it after every
// write so release progress is visible as it happens.
type FlushingWriter struct {
	destination io.Writer
	writeMutex  sync.Mutex
}

// NewFlushingWriter wraps the destination writer. A nil destination yields nil,
// and an already wrapped writer is returned unchanged.
func NewFlushingWriter(destination io.Writer) io.Writer {
	if destination == nil {
		return nil
	}
	if _, alreadyWrapped := destination.(*FlushingWriter); alreadyWrapped {
		return destination
	}
	return &FlushingWriter{destination: destination}
}

// Write forwards data to the destination and flushes it when the destination supports flushing.
func (flushingWriter *FlushingWriter) Write(data []byte) (int, error) {
	if flushingWriter == nil || flushingWriter.destination == nil {
		return 0, nil
	}

	flushingWriter.writeMutex.Lock()
	defer flushingWriter.writeMutex.Unlock()

	bytesWritten, writeError := flushingWriter.destination.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}

	if flushableDestination, supportsFlush := flushingWriter.destination.(flushable); supportsFlush {
		if flushError := flushableDestination.Flush(); flushError != nil {
			return bytesWritten, flushError
		}
	}

	return bytesWritten, nil
}
