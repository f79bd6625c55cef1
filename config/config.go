package config

import (
	"time"

	"github.com/ardanlabs/conf/v3"
)

type Config struct {
	conf.Version
	Web     Web
	Catalog Catalog
	Auth    Auth
	Session Session
	Cors    Cors
	Rate    Rate
	Trace   Trace
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:30s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type Catalog struct {
	URL     string        `conf:"default:https://fakestoreapi.com"`
	Timeout time.Duration `conf:"default:15s"`
	// FanOut bounds the carts normalized at once during a listing, 0 means unbounded.
	FanOut int `conf:"default:0"`
	UserID int `conf:"default:1"`
}

type Auth struct {
	Username          string        `conf:"default:admin123"`
	Password          string        `conf:"default:12345678,mask"`
	MinPasswordLength int           `conf:"default:8"`
	TokenSecret       string        `conf:"default:change-me,mask"`
	TokenLifetime     time.Duration `conf:"default:24h"`
	Required          bool          `conf:"default:false"`
}

type Session struct {
	Lifetime      time.Duration `conf:"default:24h"`
	Store         string        `conf:"default:memory,help:memory or redis"`
	RedisAddress  string        `conf:"default:localhost:6379"`
	RedisPassword string        `conf:"mask"`
	RedisDB       int           `conf:"default:0"`
}

type Cors struct {
	Origins []string `conf:"default:http://localhost:3000"`
}

type Rate struct {
	Burst  int     `conf:"default:5"`
	RPS    float64 `conf:"default:0.2"`
	Expiry int     `conf:"default:10,help:minutes before an idle client limiter is dropped"`
}

type Trace struct {
	Enabled     bool   `conf:"default:false"`
	ServiceName string `conf:"default:cart-admin"`
}
