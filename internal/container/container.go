package container

import (
	app "samosa-vision/internal/application"
	"samosa-vision/internal/domain/port"
)

type Container struct {
	Sessions *app.SessionService
}

// Options — параметры сборки сервисов приложения.
type Options struct {
	Probe          port.ImageProbe
	MaxImageBytes  int64
	RefusalMarkers []string
	Session        []app.SessionOption
}

func New(repo port.SessionRepository, analyzer port.Analyzer, opts Options) *Container {
	encOpts := []app.EncoderOption{app.WithMaxBytes(opts.MaxImageBytes)}
	if opts.Probe != nil {
		encOpts = append(encOpts, app.WithProbe(opts.Probe))
	}
	encoder := app.NewEncoder(encOpts...)
	validator := app.NewValidator(opts.RefusalMarkers...)

	return &Container{
		Sessions: app.NewSessionService(repo, encoder, analyzer, validator, opts.Session...),
	}
}
