package inventory

import (
    "context"
    "errors"
    "fmt"
    "net/url"
    "strings"
    "time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"gridtools/config"
	"gridtools/internal/pkg/model"
)

// Client wraps a GORM DB connection for the cluster inventory database.
type Client struct {
	DB *gorm.DB
}

// Close closes the underlying connection pool.
func (c *Client) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// New creates a read-only GORM client configured from config.Inventory.
func New(cfg config.Inventory) (*Client, error) {
	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	gcfg := &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Warn),
	}

	db, err := gorm.Open(mysql.Open(dsn), gcfg)
	if err != nil {
		return nil, err
	}

	if err := tunePool(db, cfg); err != nil {
		return nil, err
	}

	// Enforce read-only at ORM layer
	enforceReadOnly(db)

	return &Client{DB: db}, nil
}

// tunePool sizes the connection pool and verifies the database is actually
// reachable; an unreachable inventory database fails client construction.
func tunePool(db *gorm.DB, cfg config.Inventory) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if d := parseDuration(cfg.ConnMaxLifetime); d > 0 {
		sqlDB.SetConnMaxLifetime(d)
	}
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("inventory database unreachable: %w", err)
	}
	return nil
}

// buildDSN constructs a DSN string without importing the mysql driver package.
// Format: user:pass@tcp(host:port)/dbname?param=value
func buildDSN(cfg config.Inventory) (string, error) {
	creds := cfg.User
	if cfg.Password != "" {
		creds = fmt.Sprintf("%s:%s", cfg.User, cfg.Password)
	}

	addr := fmt.Sprintf("tcp(%s:%d)", cfg.Host, cfg.Port)
	dbname := cfg.Database

	params := make([]string, 0, 4)
	if cfg.Charset != "" {
		params = append(params, fmt.Sprintf("charset=%s", cfg.Charset))
	}
	if cfg.ParseTime {
		params = append(params, "parseTime=true")
	} else {
		params = append(params, "parseTime=false")
	}
	if cfg.Loc != "" {
		params = append(params, fmt.Sprintf("loc=%s", url.QueryEscape(cfg.Loc)))
	}
	if cfg.TLS != "" {
		params = append(params, fmt.Sprintf("tls=%s", cfg.TLS))
	}

	dsn := fmt.Sprintf("%s@%s/%s", creds, addr, dbname)
	if len(params) > 0 {
		dsn = dsn + "?" + strings.Join(params, "&")
	}
	return dsn, nil
}

// parseDuration returns 0 on empty or invalid duration strings.
func parseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// Package-level default client for convenience wiring.
var defaultClient *Client

// SetDefault sets the package-level default inventory client.
func SetDefault(c *Client) { defaultClient = c }

// Default returns the package-level default inventory client.
func Default() *Client { return defaultClient }

// enforceReadOnly installs GORM callbacks that reject write operations and non-read raw SQL.
func enforceReadOnly(db *gorm.DB) {
	block := func(tx *gorm.DB) {
		tx.AddError(errors.New("inventory client is read-only"))
	}
	// Block create/update/delete
	_ = db.Callback().Create().Before("gorm:create").Register("gridtools:readonly_create", block)
	_ = db.Callback().Update().Before("gorm:update").Register("gridtools:readonly_update", block)
	_ = db.Callback().Delete().Before("gorm:delete").Register("gridtools:readonly_delete", block)

	// Block raw/exec that are not read-only
	_ = db.Callback().Raw().Before("gorm:raw").Register("gridtools:readonly_raw", func(tx *gorm.DB) {
		sql := strings.TrimSpace(tx.Statement.SQL.String())
		up := strings.ToUpper(sql)
		if strings.HasPrefix(up, "SELECT") || strings.HasPrefix(up, "SHOW") || strings.HasPrefix(up, "DESCRIBE") || strings.HasPrefix(up, "EXPLAIN") {
			return
		}
		tx.AddError(errors.New("read-only: raw SQL must be SELECT/SHOW/DESCRIBE/EXPLAIN"))
	})
}

// GetNodes queries node_table, excluding retired hardware unless
// includeRetired is set.
func (c *Client) GetNodes(ctx context.Context, includeRetired bool) (model.Nodes, error) {
	if c == nil || c.DB == nil {
		return nil, fmt.Errorf("nil inventory client")
	}
	res := make(model.Nodes, 0)
	tx := c.DB.WithContext(ctx).Model(&model.Node{})
	if !includeRetired {
		tx = tx.Where("retired = ?", 0)
	}
	if err := tx.Find(&res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

// GetServiceTags returns the distinct, non-empty service tags of all
// non-retired nodes.
func (c *Client) GetServiceTags(ctx context.Context) ([]string, error) {
	if c == nil || c.DB == nil {
		return nil, fmt.Errorf("nil inventory client")
	}
	var tags []string
	tx := c.DB.WithContext(ctx).
		Model(&model.Node{}).
		Where("service_tag <> '' AND retired = 0").
		Distinct().
		Pluck("service_tag", &tags)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tags, nil
}
