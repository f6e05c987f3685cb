package db

import (
	"context"

	"github.com/smallbiznis/loadstone/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Conns bundles the source connection the extractor reads from and the
// warehouse connection everything downstream writes to. When no source
// database is configured the warehouse connection serves both roles.
type Conns struct {
	Source    *gorm.DB
	Warehouse *gorm.DB
}

func NewConns(cfg config.Config, log *zap.Logger) (*Conns, error) {
	warehouse, err := New(Config{
		Type:            cfg.WarehouseDBType,
		Host:            cfg.WarehouseDBHost,
		Port:            cfg.WarehouseDBPort,
		Name:            cfg.WarehouseDBName,
		User:            cfg.WarehouseDBUser,
		Password:        cfg.WarehouseDBPassword,
		SSLMode:         cfg.WarehouseDBSSLMode,
		Path:            cfg.WarehouseDBPath,
		MaxIdleConn:     cfg.WarehouseDBMaxIdleConn,
		MaxOpenConn:     cfg.WarehouseDBMaxOpenConn,
		ConnMaxLifetime: cfg.WarehouseDBConnMaxLifetime,
		ConnMaxIdleTime: cfg.WarehouseDBConnMaxIdleTime,
	})
	if err != nil {
		return nil, err
	}

	source := warehouse
	if cfg.SourceDBHost != "" || cfg.SourceDBPath != "" {
		source, err = New(Config{
			Type:     cfg.SourceDBType,
			Host:     cfg.SourceDBHost,
			Port:     cfg.SourceDBPort,
			Name:     cfg.SourceDBName,
			User:     cfg.SourceDBUser,
			Password: cfg.SourceDBPassword,
			SSLMode:  cfg.SourceDBSSLMode,
			Path:     cfg.SourceDBPath,
		})
		if err != nil {
			return nil, err
		}
	} else {
		log.Named("db").Info("db.source.shared", zap.String("reason", "no source database configured"))
	}

	return &Conns{Source: source, Warehouse: warehouse}, nil
}

func registerHooks(lc fx.Lifecycle, conns *Conns) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = ctx
			if sqlDB, err := conns.Warehouse.DB(); err == nil {
				_ = sqlDB.Close()
			}
			if conns.Source != conns.Warehouse {
				if sqlDB, err := conns.Source.DB(); err == nil {
					_ = sqlDB.Close()
				}
			}
			return nil
		},
	})
}

var Module = fx.Module("db",
	fx.Provide(
		NewConns,
		// The warehouse connection is the default *gorm.DB; the
		// extractor reaches the source through Conns.
		func(c *Conns) *gorm.DB { return c.Warehouse },
	),
	fx.Invoke(registerHooks),
)
