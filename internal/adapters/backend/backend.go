package backend

import (
	"context"
	"fmt"

	"tagit/internal/adapters/consul"
	"tagit/internal/adapters/memory"
	"tagit/internal/adapters/postgres"
	"tagit/internal/adapters/s3"
	"tagit/internal/adapters/sqlite"
	"tagit/internal/config"
	"tagit/internal/ports"
)

// Open returns the storage selected by cfg.Backend
func Open(ctx context.Context, cfg *config.Config) (ports.TagStorage, error) {
	switch cfg.Backend {
	case "memory":
		return memory.NewStorage(), nil

	case "", "sqlite":
		path := cfg.SQLite.Path
		if path == "" {
			path = sqlite.DatabasePath(cfg.Root)
		}
		return sqlite.OpenDriver(ctx, cfg.SQLite.Driver, path)

	case "postgres":
		return postgres.Open(ctx, cfg.Postgres.URL)

	case "consul":
		return consul.New(consul.Config{
			Address:    cfg.Consul.Address,
			Token:      cfg.Consul.Token,
			Datacenter: cfg.Consul.Datacenter,
			Prefix:     cfg.Consul.Prefix,
		})

	case "s3":
		return s3.Open(ctx, s3.Config{
			Endpoint:     cfg.S3.Endpoint,
			Bucket:       cfg.S3.Bucket,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
			Prefix:       cfg.S3.Prefix,
			UseSSL:       cfg.S3.UseSSL,
			CreateBucket: cfg.S3.CreateBucket,
		})

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
