package logger

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

const flushInterval = 2 * time.Second

// AsyncFileWriter queues log lines and writes them from a single goroutine.
// Lines are dropped, never blocked on, when the queue is full.
type AsyncFileWriter struct {
	writer  *bufio.Writer
	file    *os.File
	logChan chan []byte
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	dropped atomic.Int64
}

func NewAsyncFileWriter(logFile string, bufferSize int) (*AsyncFileWriter, error) {
	file, err := os.OpenFile(filepath.Clean(logFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, err
	}

	aw := &AsyncFileWriter{
		writer:  bufio.NewWriterSize(file, bufferSize),
		file:    file,
		logChan: make(chan []byte, 1000),
		done:    make(chan struct{}),
	}

	aw.wg.Add(1)
	go aw.processLogs()

	return aw, nil
}

func (aw *AsyncFileWriter) Write(p []byte) (int, error) {
	select {
	case aw.logChan <- append([]byte{}, p...):
	default:
		aw.dropped.Add(1)
	}
	return len(p), nil
}

// Dropped reports how many lines were discarded because the queue was full.
func (aw *AsyncFileWriter) Dropped() int64 {
	return aw.dropped.Load()
}

func (aw *AsyncFileWriter) processLogs() {
	defer aw.wg.Done()
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()
	for {
		select {
		case logData := <-aw.logChan:
			if _, err := aw.writer.Write(logData); err != nil {
				fmt.Fprintln(os.Stderr, "error writing log data to file", err)
			}
		case <-ticker.C:
			_ = aw.writer.Flush()
		case <-aw.done:
			for {
				select {
				case logData := <-aw.logChan:
					_, _ = aw.writer.Write(logData)
				default:
					_ = aw.writer.Flush()
					return
				}
			}
		}
	}
}

func (aw *AsyncFileWriter) Close() error {
	var err error
	aw.once.Do(func() {
		close(aw.done)
		aw.wg.Wait()
		err = aw.file.Close()
	})
	return err
}
