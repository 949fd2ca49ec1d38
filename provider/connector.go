package provider

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver
)

// ConnectionInfo contains parsed schema reference information.
type ConnectionInfo struct {
	Type     string
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Path     string // file path for sqlite and file references
	Options  map[string]string
}

// ParseReference parses a schema reference URL into connection information.
// Supported schemes: postgres://, mysql://, sqlite://, file://.
func ParseReference(ref string) (ConnectionInfo, error) {
	if strings.TrimSpace(ref) == "" {
		return ConnectionInfo{}, ErrEmptyReference
	}

	u, err := url.Parse(ref)
	if err != nil {
		return ConnectionInfo{}, fmt.Errorf("%w: %s", ErrInvalidReference, ref)
	}

	info := ConnectionInfo{Options: map[string]string{}}

	for key, values := range u.Query() {
		if len(values) > 0 {
			info.Options[key] = values[0]
		}
	}

	switch u.Scheme {
	case "postgres", "postgresql":
		info.Type = "postgres"
		info.Host = u.Hostname()
		info.Port = u.Port()

		if info.Port == "" {
			info.Port = "5432"
		}
	case "mysql":
		info.Type = "mysql"
		info.Host = u.Hostname()
		info.Port = u.Port()

		if info.Port == "" {
			info.Port = "3306"
		}
	case "sqlite", "sqlite3":
		info.Type = "sqlite"
		info.Path = referencePath(u)

		return info, nil
	case "file":
		info.Type = "file"
		info.Path = referencePath(u)

		return info, nil
	default:
		return ConnectionInfo{}, fmt.Errorf("%w: %s", ErrUnsupportedDatabase, u.Scheme)
	}

	info.Database = strings.TrimPrefix(u.Path, "/")
	if info.Host == "" || info.Database == "" {
		return ConnectionInfo{}, fmt.Errorf("%w: %s", ErrInvalidReference, ref)
	}

	if u.User != nil {
		info.Username = u.User.Username()
		if password, ok := u.User.Password(); ok {
			info.Password = password
		}
	}

	return info, nil
}

func referencePath(u *url.URL) string {
	if u.Host == "" {
		// sqlite:///path/to/db.db form
		return u.Path
	}

	// sqlite://./db.db form
	return u.Host + u.Path
}

// NormalizeReference produces the cache key for a schema reference so
// that equivalent references share one snapshot.
func NormalizeReference(ref string) string {
	trimmed := strings.TrimSpace(ref)

	u, err := url.Parse(trimmed)
	if err != nil || u.Scheme == "" {
		return trimmed
	}

	u.Scheme = strings.ToLower(u.Scheme)

	switch u.Scheme {
	case "postgresql":
		u.Scheme = "postgres"
	case "sqlite3":
		u.Scheme = "sqlite"
	}

	u.Host = strings.ToLower(u.Host)

	return u.String()
}

// Connect opens a database handle for a parsed reference.
func Connect(info ConnectionInfo) (*sql.DB, error) {
	driver, dsn, err := driverString(info)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSchemaUnavailable, err)
	}

	return db, nil
}

// driverString converts connection info to a driver-specific DSN.
func driverString(info ConnectionInfo) (driver, dsn string, err error) {
	switch info.Type {
	case "postgres":
		auth := ""
		if info.Username != "" {
			auth = info.Username
			if info.Password != "" {
				auth += ":" + info.Password
			}

			auth += "@"
		}

		dsn = fmt.Sprintf("postgres://%s%s:%s/%s", auth, info.Host, info.Port, info.Database)
		if _, ok := info.Options["sslmode"]; !ok {
			dsn += "?sslmode=disable"
		} else {
			dsn += "?sslmode=" + info.Options["sslmode"]
		}

		return "pgx", dsn, nil
	case "mysql":
		auth := ""
		if info.Username != "" {
			auth = info.Username
			if info.Password != "" {
				auth += ":" + info.Password
			}

			auth += "@"
		}

		return "mysql", fmt.Sprintf("%stcp(%s:%s)/%s", auth, info.Host, info.Port, info.Database), nil
	case "sqlite":
		return "sqlite3", info.Path, nil
	default:
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedDatabase, info.Type)
	}
}
