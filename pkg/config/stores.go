package config

import (
	"fmt"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DBConfig takes a full DSN, or assembles one from host, user and name.
type DBConfig struct {
	DSN string `envconfig:"SHERRYS_DB_DSN"`

	Host     string `envconfig:"SHERRYS_DB_HOST"`
	Port     int    `envconfig:"SHERRYS_DB_PORT" default:"5432"`
	User     string `envconfig:"SHERRYS_DB_USER"`
	Password string `envconfig:"SHERRYS_DB_PASSWORD"`
	Name     string `envconfig:"SHERRYS_DB_NAME"`
	SSLMode  string `envconfig:"SHERRYS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHERRYS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHERRYS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHERRYS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHERRYS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	QueryTimeout    time.Duration `envconfig:"SHERRYS_DB_QUERY_TIMEOUT" default:"5s"`
}

func (d *DBConfig) resolveDSN() error {
	if d.DSN != "" {
		return nil
	}
	var missing []string
	for env, v := range map[string]string{EnvDBHost: d.Host, EnvDBUser: d.User, EnvDBName: d.Name} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("%s is unset and so are %s", EnvDBDSN, strings.Join(missing, ", "))
	}

	who := url.User(d.User)
	if d.Password != "" {
		who = url.UserPassword(d.User, d.Password)
	}
	dsn := url.URL{
		Scheme: "postgres",
		User:   who,
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   d.Name,
	}
	if d.SSLMode != "" {
		dsn.RawQuery = url.Values{"sslmode": {d.SSLMode}}.Encode()
	}
	d.DSN = dsn.String()
	return nil
}

// RedisConfig prefers URL; Address and friends apply when it is empty.
type RedisConfig struct {
	URL          string        `envconfig:"SHERRYS_REDIS_URL"`
	Address      string        `envconfig:"SHERRYS_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"SHERRYS_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHERRYS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHERRYS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHERRYS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHERRYS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHERRYS_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"SHERRYS_REDIS_WRITE_TIMEOUT" default:"3s"`
}

