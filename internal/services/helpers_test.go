package services

import (
	"io"
	"log/slog"

	appconfig "southcoast-promotion/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testUploadConfig() appconfig.UploadConfig {
	return appconfig.UploadConfig{
		MaxFileSize:      1024,
		MaxFiles:         10,
		AcceptedTypes:    []string{"image/*", "video/mp4", "application/pdf"},
		GeneratePreviews: false,
		SimulateUploads:  false,
	}
}
