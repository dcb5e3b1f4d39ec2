// Package catalog resolves Glue catalog tables to their S3 locations so the
// preprocessing step can read registered datasets.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
)

var ErrNoLocation = errors.New("table has no storage location")

// API is the subset of the Glue client the catalog depends on.
type API interface {
	GetTable(ctx context.Context, in *glue.GetTableInput, opts ...func(*glue.Options)) (*glue.GetTableOutput, error)
}

// Catalog looks up table metadata.
type Catalog struct {
	api    API
	logger *slog.Logger
}

// New builds a Catalog from an AWS configuration.
func New(awsCfg aws.Config, logger *slog.Logger) *Catalog {
	return &Catalog{
		api:    glue.NewFromConfig(awsCfg),
		logger: logger.With("system", "catalog"),
	}
}

// NewWithAPI builds a Catalog around an existing client.
func NewWithAPI(api API, logger *slog.Logger) *Catalog {
	return &Catalog{api: api, logger: logger.With("system", "catalog")}
}

// TableLocation returns the S3 URI backing a catalog table.
func (c *Catalog) TableLocation(ctx context.Context, database, table string) (string, error) {
	out, err := c.api.GetTable(ctx, &glue.GetTableInput{
		DatabaseName: aws.String(database),
		Name:         aws.String(table),
	})
	if err != nil {
		return "", fmt.Errorf("get table %s.%s: %w", database, table, err)
	}
	if out.Table == nil || out.Table.StorageDescriptor == nil || out.Table.StorageDescriptor.Location == nil {
		return "", fmt.Errorf("%w: %s.%s", ErrNoLocation, database, table)
	}

	location := aws.ToString(out.Table.StorageDescriptor.Location)
	c.logger.Info("table resolved", "database", database, "table", table, "location", location)
	return location, nil
}
