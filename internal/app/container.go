package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/apiclient"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/auth"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/batch"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/config"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/export"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/metrics"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/ports"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/repository"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

// Container holds application dependencies / Contient les dépendances de l'application
type Container struct {
	Config      *config.Config
	Registry    *prometheus.Registry
	Metrics     *metrics.Metrics
	Credentials ports.CredentialProvider
	Client      *apiclient.Client
	Journal     *repository.Journal // nil when journaling is disabled / nil si le journal est désactivé
	Runner      *batch.Runner
	Services    *service.Services
}

// NewContainer initializes application container / Initialise le conteneur de l'application
func NewContainer(cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	// Each container owns its registry so several can coexist in one process
	c.Registry = prometheus.NewRegistry()
	c.Metrics = metrics.NewMetrics(c.Registry)

	if err := c.initClient(); err != nil {
		return nil, fmt.Errorf("client init: %w", err)
	}

	if err := c.initJournal(); err != nil {
		return nil, fmt.Errorf("journal init: %w", err)
	}

	c.initServices()
	return c, nil
}

// initClient builds the authenticated HTTP client / Construit le client HTTP authentifié
func (c *Container) initClient() error {
	c.Credentials = auth.NewProvider(c.Config.Auth.Token, c.Config.Auth.TokenFile, c.Config.Auth.ExpirySkew)

	var limiter *rate.Limiter
	if rl := c.Config.RateLimiter; rl.Enabled {
		limiter = rate.NewLimiter(rate.Limit(rl.RPS), rl.Burst)
	}

	client, err := apiclient.New(apiclient.Options{
		BaseURL:     c.Config.API.BaseURL,
		Timeout:     c.Config.API.Timeout,
		UserAgent:   c.Config.API.UserAgent,
		Credentials: c.Credentials,
		Limiter:     limiter,
		Metrics:     c.Metrics,
	})
	if err != nil {
		return err
	}
	c.Client = client
	return nil
}

// initJournal opens the bulk-run journal when enabled / Ouvre le journal des exécutions si activé
func (c *Container) initJournal() error {
	if !c.Config.Bulk.JournalEnabled {
		return nil
	}
	journal, err := repository.OpenJournal(c.Config.Bulk.JournalPath)
	if err != nil {
		return err
	}
	c.Journal = journal
	slog.Debug("bulk journal opened", "path", c.Config.Bulk.JournalPath)
	return nil
}

// initServices initializes domain services / Initialise les services métier
func (c *Container) initServices() {
	opts := batch.Options{
		Concurrency: c.Config.Bulk.Concurrency,
		Recorder:    c.Metrics,
	}
	// A typed nil *Journal must not reach the interface
	if c.Journal != nil {
		opts.Journal = c.Journal
	}
	c.Runner = batch.NewRunner(opts)

	c.Services = service.New(service.Options{
		HTTP:            c.Client,
		Runner:          c.Runner,
		Metrics:         c.Metrics,
		StrictSubchecks: c.Config.Validation.StrictSubchecks,
		Export: service.ExportSettings{
			CSV: export.CSVOptions{
				Separator: c.Config.Export.SeparatorRune(),
				BOM:       c.Config.Export.BOM,
				CRLF:      true,
			},
			PageSize: c.Config.Export.PageSize,
			MaxPages: c.Config.Export.MaxPages,
		},
	})
}

// Close flushes metrics and releases the journal / Écrit les métriques et ferme le journal
func (c *Container) Close() error {
	var errs []error
	if c.Config.Metrics.Enabled && c.Config.Metrics.TextfilePath != "" {
		errs = append(errs, metrics.WriteTextfile(c.Config.Metrics.TextfilePath, c.Registry))
	}
	if c.Journal != nil {
		slog.Debug("closing bulk journal")
		errs = append(errs, c.Journal.Close())
	}
	return errors.Join(errs...)
}
