package constants

import "time"

const (
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
	ExternalAPITimeout = 10 * time.Second
)

const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	BcryptCost = 10
)
