package main

import (
	"github.com/dmitrymomot/todoapi/modules/tasks"
	"github.com/dmitrymomot/todoapi/pkg/auth"
	"github.com/dmitrymomot/todoapi/pkg/cors"
	"github.com/dmitrymomot/todoapi/pkg/email"
	"github.com/dmitrymomot/todoapi/pkg/file"
	"github.com/dmitrymomot/todoapi/pkg/httpserver"
	"github.com/dmitrymomot/todoapi/pkg/jwt"
	"github.com/dmitrymomot/todoapi/pkg/mongo"
	"github.com/dmitrymomot/todoapi/pkg/ratelimit"
	"github.com/dmitrymomot/todoapi/pkg/redis"
)

const serviceName = "todo-api"

// appConfig is loaded once at startup. Nested structs read their own
// variables; see each package's Config.
type appConfig struct {
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL"`
	Version  string `env:"APP_VERSION" envDefault:"1.0.0"`

	// TrustProxy makes the client IP come from proxy headers such as
	// X-Forwarded-For. Enable only behind a proxy that sets them.
	TrustProxy bool `env:"TRUST_PROXY" envDefault:"false"`

	HTTP      httpserver.Config
	Mongo     mongo.Config
	Redis     redis.Config
	JWT       jwt.Config
	Google    auth.GoogleConfig
	CORS      cors.Config
	RateLimit ratelimit.Config
	Avatars   file.Config
	Email     email.Config
	Reminder  tasks.ReminderConfig
}

func (c appConfig) isDevelopment() bool {
	switch c.AppEnv {
	case "production", "prod", "staging", "stage":
		return false
	}
	return true
}
