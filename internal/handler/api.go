package handler

import (
	"strings"

	"github.com/habitspark/internal/locale"
	"github.com/habitspark/internal/metrics"
	"github.com/habitspark/internal/progress"
	"github.com/habitspark/internal/service"
	"gorm.io/gorm"
)

// Options configures the handler set.
type Options struct {
	Clock                 progress.Clock
	DefaultUserID         string
	DefaultLanguage       string
	ReverseXPOnUncomplete bool
	Metrics               *metrics.Recorder
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	habits          *service.HabitService
	completions     *service.CompletionService
	profiles        *service.ProfileService
	progress        *service.ProgressService
	metrics         *metrics.Recorder
	defaultUserID   string
	defaultLanguage string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB, opts Options) *API {
	defaultUser := strings.TrimSpace(opts.DefaultUserID)
	if defaultUser == "" {
		defaultUser = "local_user"
	}

	return &API{
		habits:      service.NewHabitService(db),
		completions: service.NewCompletionService(db),
		profiles:    service.NewProfileService(db),
		progress: service.NewProgressService(db, opts.Clock, service.ProgressOptions{
			ReverseXPOnUncomplete: opts.ReverseXPOnUncomplete,
		}),
		metrics:         opts.Metrics,
		defaultUserID:   defaultUser,
		defaultLanguage: locale.Resolve(opts.DefaultLanguage),
	}
}

// Metrics returns the recorder, nil when metrics are disabled.
func (a *API) Metrics() *metrics.Recorder {
	return a.metrics
}
