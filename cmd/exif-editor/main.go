// cmd/exif-editor/main.go
package main

import (
	"github.com/bstardust/exif-editor/internal/logger"
	"github.com/bstardust/exif-editor/pkg/cli"
)

func main() {
	// Initialize logger
	logger.Init()

	// Execute CLI
	cli.Execute()
}
