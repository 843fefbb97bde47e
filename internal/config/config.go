package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       string
	DBDSN      string
	UploadDir  string
	LogFile    string
	CORSOrigin string
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "soltienda.db"
	} // sqlite file in project root
	uploads := os.Getenv("UPLOAD_DIR")
	if uploads == "" {
		uploads = "./uploads"
	}
	logFile := os.Getenv("LOG_FILE")
	origin := os.Getenv("CORS_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	} // the Vite dev server of the storefront

	cfg := Config{Port: port, DBDSN: dsn, UploadDir: uploads, LogFile: logFile, CORSOrigin: origin}
	log.Printf("[config] PORT=%s DB_DSN=%s UPLOAD_DIR=%s LOG_FILE=%s CORS_ORIGIN=%s",
		cfg.Port, cfg.DBDSN, cfg.UploadDir, cfg.LogFile, cfg.CORSOrigin)
	return cfg
}
