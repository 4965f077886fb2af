package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	supabase "github.com/supabase-community/supabase-go"
)

// SupabaseConfig configures the managed-Postgres backend.
type SupabaseConfig struct {
	// ProjectURL is the Supabase project URL, e.g.
	// "https://[project-ref].supabase.co".
	ProjectURL string

	// APIKey initializes the Supabase SDK (service_role key server-side).
	APIKey string

	// Password is the database password used to build the direct Postgres
	// connection string.
	Password string
}

// SupabaseClient connects the store to a Supabase-hosted Postgres. It
// implements DBProvider, so SQLStore runs over it unchanged; the SDK handle
// is exposed for Supabase-specific features.
type SupabaseClient struct {
	db  *sql.DB
	sdk *supabase.Client
	cfg SupabaseConfig
}

// NewSupabaseClient constructs an unconnected client.
func NewSupabaseClient(cfg SupabaseConfig) *SupabaseClient {
	return &SupabaseClient{cfg: cfg}
}

// Connect initializes the SDK and the direct database connection.
func (c *SupabaseClient) Connect(ctx context.Context) error {
	if c.cfg.ProjectURL == "" || c.cfg.APIKey == "" {
		return fmt.Errorf("supabase project URL and API key are required")
	}

	sdk, err := supabase.NewClient(c.cfg.ProjectURL, c.cfg.APIKey, nil)
	if err != nil {
		return fmt.Errorf("initialize supabase SDK: %w", err)
	}
	c.sdk = sdk

	dsn, err := c.connectionString()
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open supabase postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping supabase postgres: %w", err)
	}

	c.db = db
	return nil
}

// Close closes the database connection.
func (c *SupabaseClient) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// DB exposes the underlying handle; implements DBProvider.
func (c *SupabaseClient) DB() *sql.DB {
	return c.db
}

// SDK returns the Supabase SDK client (auth, storage, realtime).
func (c *SupabaseClient) SDK() *supabase.Client {
	return c.sdk
}

// connectionString derives the direct Postgres DSN from the project URL and
// password. Prepared-statement caching is disabled: pooled Supabase
// connections conflict with pgx's statement cache under parallel load.
func (c *SupabaseClient) connectionString() (string, error) {
	if c.cfg.Password == "" {
		return "", fmt.Errorf("supabase database password is required")
	}

	parsed, err := url.Parse(c.cfg.ProjectURL)
	if err != nil {
		return "", fmt.Errorf("parse supabase project URL: %w", err)
	}
	parts := strings.Split(parsed.Host, ".")
	if len(parts) < 2 {
		return "", fmt.Errorf("invalid supabase project URL: expected [project-ref].supabase.co")
	}
	projectRef := parts[0]

	return fmt.Sprintf(
		"postgresql://postgres:%s@db.%s.supabase.co:5432/postgres?sslmode=require&statement_cache_capacity=0&default_query_exec_mode=simple_protocol",
		url.QueryEscape(c.cfg.Password), projectRef,
	), nil
}
