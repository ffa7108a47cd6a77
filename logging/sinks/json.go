package sinks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"duskhollow/server/logging"
)

// JSONFile appends newline-delimited JSON events to a file.
type JSONFile struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

func NewJSONFile(path string) (*JSONFile, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open event log %s: %w", path, err)
	}
	return &JSONFile{file: file, enc: json.NewEncoder(file)}, nil
}

func (j *JSONFile) Write(event logging.Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.enc.Encode(event)
}

func (j *JSONFile) Close(context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}
