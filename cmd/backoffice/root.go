package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/apiclient"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/app"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/config"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/logging"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/normalize"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/ports"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/service"
	"github.com/LendroDuCode/full-project-web-oskar-sub012/internal/validation"
	"github.com/spf13/cobra"
)

// skipContainer marks commands that run without configuration / Marque les commandes sans configuration
const skipContainer = "skip-container"

// cli carries global flags and the lazily built container / Porte les flags globaux et le conteneur
type cli struct {
	configPath string
	output     string
	verbose    bool

	container *app.Container
	closeLogs func() error
}

func (c *cli) services() *service.Services {
	return c.container.Services
}

// newRootCmd builds the command tree / Construit l'arbre de commandes
func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "backoffice",
		Short:         "Marketplace back-office client",
		Long:          "Administre les référentiels, commandes, commentaires et intérêts de la marketplace via son API REST.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipContainer] == "true" {
				return nil
			}
			return c.setup(cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "path to config.yaml (default ./config.yaml)")
	flags.StringVarP(&c.output, "output", "o", "json", "output format: json or yaml")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "debug logging on stderr")

	root.AddCommand(
		newCiviliteCmd(c),
		newPaysCmd(c),
		newVilleCmd(c),
		newCategorieCmd(c),
		newCommandeCmd(c),
		newCommentaireCmd(c),
		newDonInteresseCmd(c),
		newEchangeInteresseCmd(c),
		newRunsCmd(c),
		newVersionCmd(c),
	)
	return root
}

// setup loads config, logging and dependencies / Charge config, logs et dépendances
func (c *cli) setup(stderr io.Writer) error {
	if c.container != nil {
		return nil
	}
	switch strings.ToLower(c.output) {
	case "json", "yaml":
	default:
		return fmt.Errorf("unsupported output format %q", c.output)
	}

	cfg, err := config.LoadConfig(c.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.verbose {
		cfg.Logging.Level = "debug"
	}

	logger, closeLogs := logging.Setup(cfg.Logging, cfg.IsProduction(), stderr)
	slog.SetDefault(logger)
	c.closeLogs = closeLogs

	container, err := app.NewContainer(cfg)
	if err != nil {
		return err
	}
	c.container = container
	return nil
}

func (c *cli) teardown() error {
	var err error
	if c.container != nil {
		err = c.container.Close()
		c.container = nil
	}
	if c.closeLogs != nil {
		_ = c.closeLogs()
		c.closeLogs = nil
	}
	return err
}

// execute runs the CLI and returns the process exit code / Exécute la CLI et retourne le code de sortie
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	c := &cli{}
	defer func() {
		if err := c.teardown(); err != nil {
			fmt.Fprintln(stderr, "Avertissement:", err)
		}
	}()

	root := newRootCmd(c)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Erreur:", errorMessage(err))
		slog.Debug("command failed", "err", err)
		return 1
	}
	return 0
}

// errorMessage shows backend failures in operator French and local failures verbatim.
func errorMessage(err error) string {
	var herr *apiclient.HTTPError
	var verr *validation.ValidationError
	switch {
	case errors.As(err, &herr), errors.As(err, &verr),
		errors.Is(err, normalize.ErrNotFound), errors.Is(err, ports.ErrNoCredentials),
		errors.Is(err, context.DeadlineExceeded):
		return apiclient.UserMessage(err)
	default:
		return err.Error()
	}
}

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
