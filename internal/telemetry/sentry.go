// Package telemetry reports fatal run errors to Sentry when the operator has
// opted in. Nothing is sent unless telemetry.enabled is set and a DSN is
// configured.
package telemetry

import (
	"fmt"
	"runtime"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/tphakala/phagepairs/internal/conf"
	"github.com/tphakala/phagepairs/internal/errors"
	"github.com/tphakala/phagepairs/internal/logger"
	"github.com/tphakala/phagepairs/internal/privacy"
)

const flushTimeout = 2 * time.Second

// Init configures the Sentry SDK and installs the error reporter. The
// returned function flushes pending events and must be called before exit.
func Init(settings *conf.TelemetrySettings, version string, log logger.Logger) (func(), error) {
	return initWithTransport(settings, version, log, nil)
}

func initWithTransport(settings *conf.TelemetrySettings, version string, log logger.Logger, transport sentry.Transport) (func(), error) {
	if !settings.Enabled {
		log.Debug("Sentry telemetry is disabled (opt-in required)")
		errors.SetTelemetryReporter(nil)
		return func() {}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              settings.SentryDSN,
		SampleRate:       1.0,
		AttachStacktrace: false,
		ServerName:       "", // keep the hostname out of events
		Release:          fmt.Sprintf("phagepairs@%s", version),
		Transport:        transport,
		BeforeSend:       beforeSend,
	})
	if err != nil {
		return nil, errors.New(fmt.Errorf("sentry initialization failed: %w", err)).
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Build()
	}

	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("os", runtime.GOOS)
		scope.SetTag("arch", runtime.GOARCH)
		scope.SetTag("go_version", runtime.Version())
	})

	errors.SetTelemetryReporter(errors.NewSentryReporter(true))
	log.Info("Sentry telemetry initialized", logger.String("release", version))

	return func() {
		sentry.Flush(flushTimeout)
	}, nil
}

// beforeSend drops fields that could identify the host machine or user and
// masks credentials left in messages, e.g. a ledger DSN in a driver error.
func beforeSend(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	event.ServerName = ""
	event.User = sentry.User{}
	event.Message = privacy.ScrubMessage(event.Message)
	for i := range event.Exception {
		event.Exception[i].Value = privacy.ScrubMessage(event.Exception[i].Value)
	}
	if event.Request != nil {
		event.Request.Cookies = ""
		event.Request.Headers = nil
	}
	return event
}
