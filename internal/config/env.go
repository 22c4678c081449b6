package config

import (
	"os"
	"strings"
)

type Env struct {
	AppAddr string
	GinMode string
	DBDSN   string
}

func LoadEnv() Env {
	appAddr := strings.TrimSpace(os.Getenv("APP_ADDR"))
	if appAddr == "" {
		appAddr = ":8080"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		dsn = "root:@tcp(127.0.0.1:3306)/orders_api?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"
	}

	return Env{
		AppAddr: appAddr,
		GinMode: ginMode,
		DBDSN:   dsn,
	}
}
