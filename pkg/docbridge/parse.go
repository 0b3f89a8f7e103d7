package docbridge

import (
	"flag"
	"fmt"
	"strconv"
	"time"
)

const usage = `Usage: docbridge [flags] TABLE PERIOD

Checks and synchronizes documents between a SurrealDB search store and a
PostgreSQL column store with a periodicity of PERIOD seconds. Documents
inserted into either store eventually appear in the other; deletions are
not propagated.

TABLE names the column-store table (KEYSPACE:TABLE is accepted and
normalized to schema.table). PERIOD may be fractional.

Connection settings default from the environment: POSTGRES_DSN,
SURREALDB_URL, SURREALDB_NS, SURREALDB_DB, SURREALDB_USER, SURREALDB_PASS.

Examples:
  docbridge mydata 5                   # sync every 5 seconds
  docbridge -s -v analytics:events 30  # full initial sync, verbose
  docbridge -log-file /var/log/docbridge.log mydata 60`

// Parse parses command-line arguments into a Config. A help request is
// reported as flag.ErrHelp.
func Parse(args []string) (*Config, error) {
	cfg := NewConfig()

	fs := flag.NewFlagSet("docbridge", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprintln(fs.Output(), usage) }

	fs.BoolVar(&cfg.FullSync, "s", false, "synchronize all existing data when the program starts")
	fs.BoolVar(&cfg.Verbose, "v", false, "run in verbose mode")
	fs.StringVar(&cfg.LogFile, "log-file", "", "also log to a size-rotated file")
	fs.StringVar(&cfg.PostgresDSN, "postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string")
	fs.StringVar(&cfg.SurrealURL, "surreal-url", cfg.SurrealURL, "SurrealDB WebSocket URL")
	fs.StringVar(&cfg.SurrealNS, "surreal-ns", cfg.SurrealNS, "SurrealDB namespace")
	fs.StringVar(&cfg.SurrealDB, "surreal-db", cfg.SurrealDB, "SurrealDB database")
	fs.StringVar(&cfg.SurrealUser, "surreal-user", cfg.SurrealUser, "SurrealDB username")
	fs.StringVar(&cfg.SurrealPass, "surreal-pass", cfg.SurrealPass, "SurrealDB password")
	fs.StringVar(&cfg.SurrealTable, "surreal-table", cfg.SurrealTable, "search-store table name")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	rest := fs.Args()
	if len(rest) != 2 {
		fs.Usage()
		return nil, fmt.Errorf("expected TABLE and PERIOD arguments, got %d", len(rest))
	}
	cfg.Table = normalizeTable(rest[0])

	seconds, err := strconv.ParseFloat(rest[1], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PERIOD %q: %w", rest[1], err)
	}
	cfg.Period = time.Duration(seconds * float64(time.Second))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
