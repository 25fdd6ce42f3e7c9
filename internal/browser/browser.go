// Package browser opens the provider authorize page for the operator.
package browser

import (
	"io"

	"github.com/brizzai/swagger-token/internal/config"
	"github.com/brizzai/swagger-token/internal/logger"
	pkgbrowser "github.com/pkg/browser"
	"go.uber.org/zap"
)

// Launcher opens a URL for the operator. Implementations never block on the
// page being used; an error only means the page could not be shown.
type Launcher interface {
	Open(url string) error
}

// SystemLauncher uses the platform default browser
type SystemLauncher struct {
	open func(url string) error
}

func NewSystemLauncher() *SystemLauncher {
	// Keep xdg-open and friends from writing into the operator output
	pkgbrowser.Stdout = io.Discard
	pkgbrowser.Stderr = io.Discard
	return &SystemLauncher{open: pkgbrowser.OpenURL}
}

func (l *SystemLauncher) Open(url string) error {
	logger.Debug("opening browser", zap.String("url", url))
	if err := l.open(url); err != nil {
		logger.Warn("failed to open browser", zap.Error(err))
		return err
	}
	return nil
}

// ManualLauncher opens nothing; the operator follows the printed URL
type ManualLauncher struct{}

func (ManualLauncher) Open(url string) error {
	logger.Debug("browser launch disabled", zap.String("url", url))
	return nil
}

// NewLauncher picks the launcher matching the browser config
func NewLauncher(cfg *config.BrowserConfig) Launcher {
	if cfg != nil && cfg.Disabled {
		return ManualLauncher{}
	}
	return NewSystemLauncher()
}
