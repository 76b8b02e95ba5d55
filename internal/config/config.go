package config

import (
	"crypto/rsa"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

type Config struct {
	JWTPublicKey  *rsa.PublicKey
	StoreDriver   string
	DatabaseURL   string
	RedisAddress  string
	RedisPassword string
	RedisChannel  string
	Port          string
	SeedRooms     bool
}

const (
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
)

func Load() *Config {
	publicKeyPath := os.Getenv("PUBLIC_KEY_PATH")
	if publicKeyPath == "" {
		publicKeyPath = "/etc/certs/public.pem"
	}
	publicKey, err := loadPublicKey(publicKeyPath)
	if err != nil {
		panic("Failed to load public key: " + err.Error())
	}

	driver := os.Getenv("STORE_DRIVER")
	if driver == "" {
		driver = StoreDriverPostgres
	}
	if driver != StoreDriverMemory && driver != StoreDriverPostgres {
		panic("STORE_DRIVER must be 'memory' or 'postgres', got: " + driver)
	}

	dbURL := os.Getenv("DB_CONNECTION_STRING")
	if dbURL == "" && driver == StoreDriverPostgres {
		panic("DB_CONNECTION_STRING environment variable is required")
	}

	redisChannel := os.Getenv("REDIS_FANOUT_CHANNEL")
	if redisChannel == "" {
		redisChannel = "ops-sync-changes"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return &Config{
		JWTPublicKey:  publicKey,
		StoreDriver:   driver,
		DatabaseURL:   dbURL,
		RedisAddress:  os.Getenv("REDIS_ADDRESS"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisChannel:  redisChannel,
		Port:          port,
		SeedRooms:     os.Getenv("SEED_ROOMS") != "false",
	}
}

func loadPublicKey(path string) (*rsa.PublicKey, error) {
	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(keyData)
	if err != nil {
		return nil, err
	}
	return publicKey, nil
}
