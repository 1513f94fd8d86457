package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/REPPL/Persona-sub003/internal/config"
	"github.com/REPPL/Persona-sub003/internal/logging"
	"github.com/REPPL/Persona-sub003/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}
	logging.SetLevel(os.Getenv("PERSONA_LOG_LEVEL"))

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Could not load %s: %v. Using built-in defaults", cfgPath, err)
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	srv, err := server.Bootstrap(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}
	r := srv.SetupRouter()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting verification server on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
