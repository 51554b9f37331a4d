package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/afandal/storeadmin/app/routes"
	"github.com/afandal/storeadmin/app/services"
	"github.com/afandal/storeadmin/app/storefront"
	"github.com/afandal/storeadmin/config"
	"github.com/afandal/storeadmin/internal/server"
	"github.com/afandal/storeadmin/pkg/credential"
	"github.com/afandal/storeadmin/pkg/database"
	"github.com/afandal/storeadmin/pkg/logger"
	"github.com/afandal/storeadmin/pkg/migration"
)

// cli bundles what the admin commands need: the services and the
// credential file shared between invocations.
type cli struct {
	svc   routes.Services
	audit *services.AuditService
	sess  *credential.File
	out   io.Writer
}

// bootCLI opens the credential file and wires the services. The audit
// database is optional; without it entries are only logged.
func bootCLI() (*cli, error) {
	sess, err := credential.Open(config.CredentialFile(), config.AppKey())
	if err != nil {
		return nil, err
	}
	svc, audit := server.Wire(storefront.NewFromConfig(), cliDB(), nil, nil)
	return &cli{svc: svc, audit: audit, sess: sess, out: os.Stdout}, nil
}

func cliDB() *gorm.DB {
	if err := database.Connect(); err != nil {
		logger.Debug("audit database unavailable", "error", err)
		return nil
	}
	_, err := migration.New(database.DB).Up()
	if err != nil && !errors.Is(err, migration.ErrNoMigrations) {
		logger.Debug("audit migrations failed", "error", err)
		return nil
	}
	return database.DB
}

// bootDB loads config and opens the database connection.
func bootDB() error {
	if err := config.Load(); err != nil {
		return err
	}
	return database.Connect()
}

func (c *cli) table(header ...string) *tabwriter.Writer {
	w := tabwriter.NewWriter(c.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	dashes := make([]string, len(header))
	for i, h := range header {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(w, strings.Join(dashes, "\t"))
	return w
}

func price(d decimal.Decimal) string {
	return config.Currency() + d.StringFixed(2)
}

// describe turns an error into the message shown to the operator.
func describe(err error) string {
	var verr *storefront.ValidationError
	var apiErr *storefront.APIError
	switch {
	case errors.As(err, &verr):
		keys := make([]string, 0, len(verr.Fields))
		for k := range verr.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := []string{"Validation failed:"}
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("  %s: %s", k, verr.Fields[k]))
		}
		return strings.Join(lines, "\n")
	case errors.Is(err, storefront.ErrUnauthorized):
		return "Unauthorized: Please log in again (storeadmin login)"
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, storefront.ErrNetwork):
		return "Storefront is unreachable: " + err.Error()
	default:
		return err.Error()
	}
}
