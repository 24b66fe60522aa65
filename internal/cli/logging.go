package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// setupLogging mirrors the standard logger and gin's access log into path
// when one is configured.
func setupLogging(path string) (io.Closer, error) {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if path == "" {
		return io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	out := io.MultiWriter(os.Stdout, file)
	log.SetOutput(out)
	gin.DefaultWriter = out
	gin.DefaultErrorWriter = io.MultiWriter(os.Stderr, file)
	return file, nil
}
