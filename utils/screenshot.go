package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// ScreenShotDebugger saves full-page screenshots when a portal page does not
// look the way an adapter expects.
type ScreenShotDebugger struct {
	outputDir string
	logger    *zap.Logger
	now       func() time.Time
}

func NewScreenShotDebugger(dir string, logger *zap.Logger) *ScreenShotDebugger {
	if dir == "" {
		dir = filepath.Join(".", "screenshots")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScreenShotDebugger{outputDir: dir, logger: logger.Named("screenshot"), now: time.Now}
}

func (s *ScreenShotDebugger) path(name string) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", err
	}
	timestamp := s.now().Format("2006-01-02_15-04-05")
	return filepath.Join(s.outputDir, fmt.Sprintf("%s_%s.png", name, timestamp)), nil
}

// CaptureAndLog screenshots a playwright page.
func (s *ScreenShotDebugger) CaptureAndLog(page playwright.Page, name, message string) error {
	s.logger.Info("📸 "+message, zap.String("url", page.URL()))
	path, err := s.path(name)
	if err != nil {
		s.logger.Warn("⚠️ failed to capture screenshot", zap.Error(err))
		return err
	}
	if _, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		s.logger.Warn("⚠️ failed to capture screenshot", zap.Error(err))
		return err
	}
	s.logger.Info("   screenshot saved", zap.String("path", path))
	return nil
}

// Save writes an already captured PNG.
func (s *ScreenShotDebugger) Save(png []byte, name, message string) (string, error) {
	s.logger.Info("📸 " + message)
	path, err := s.path(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		s.logger.Warn("⚠️ failed to write screenshot", zap.Error(err))
		return "", err
	}
	s.logger.Info("   screenshot saved", zap.String("path", path))
	return path, nil
}
