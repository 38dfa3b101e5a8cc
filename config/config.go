package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// BaseConfig holds everything the server binary needs to run.
type BaseConfig struct {
	Server      ServerConfig
	Auth        AuthConfig
	Persistence PersistenceConfig
}

type ServerConfig struct {
	Addr string
}

// AuthConfig implements the getter interface the library expects.
type AuthConfig struct {
	SigningKey      string
	SigningMethod   string
	ContextKey      string
	TokenExpiration int
	TokenLookup     string
	AuthScheme      string
	Issuer          string
	Audience        []string
}

type PersistenceConfig struct {
	DSN string
}

// Load reads environment variables, optionally from a .env file if present.
func Load() *BaseConfig {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	return &BaseConfig{
		Server: ServerConfig{
			Addr: getEnv("SERVER_ADDR", ":5000"),
		},
		Auth: AuthConfig{
			SigningKey:      getEnv("AUTH_SIGNING_KEY", "dev-secret-change"),
			SigningMethod:   getEnv("AUTH_SIGNING_METHOD", "HS256"),
			ContextKey:      getEnv("AUTH_CONTEXT_KEY", "user"),
			TokenExpiration: getEnvInt("AUTH_TOKEN_EXPIRATION_HOURS", 4),
			TokenLookup:     getEnv("AUTH_TOKEN_LOOKUP", "header:Authorization"),
			AuthScheme:      getEnv("AUTH_SCHEME", "JWT"),
			Issuer:          getEnv("AUTH_ISSUER", "storefront"),
			Audience:        getEnvList("AUTH_AUDIENCE"),
		},
		Persistence: PersistenceConfig{
			DSN: getEnv("DATABASE_DSN", "file:storefront.db?cache=shared"),
		},
	}
}

func (c *BaseConfig) GetServer() ServerConfig { return c.Server }

func (c *BaseConfig) GetAuth() *AuthConfig { return &c.Auth }

func (c *BaseConfig) GetPersistence() PersistenceConfig { return c.Persistence }

func (c ServerConfig) GetAddr() string { return c.Addr }

func (c *AuthConfig) GetSigningKey() string { return c.SigningKey }

func (c *AuthConfig) GetSigningMethod() string { return c.SigningMethod }

func (c *AuthConfig) GetContextKey() string { return c.ContextKey }

func (c *AuthConfig) GetTokenExpiration() int { return c.TokenExpiration }

func (c *AuthConfig) GetTokenLookup() string { return c.TokenLookup }

func (c *AuthConfig) GetAuthScheme() string { return c.AuthScheme }

func (c *AuthConfig) GetIssuer() string { return c.Issuer }

func (c *AuthConfig) GetAudience() []string { return c.Audience }

func (c PersistenceConfig) GetDSN() string { return c.DSN }

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
