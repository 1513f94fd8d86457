// personaverify is the one-shot command line front end of the verification
// pipeline: it reads source data from a JSON file, fans generation out to
// the configured backends, and prints the verification report. The process
// exits 1 when the report fails the consistency threshold.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/REPPL/Persona-sub003/internal/config"
	"github.com/REPPL/Persona-sub003/internal/core"
	"github.com/REPPL/Persona-sub003/internal/core/model"
	"github.com/REPPL/Persona-sub003/internal/llm"
	"github.com/REPPL/Persona-sub003/internal/logging"
)

var (
	cfgFile  string
	logLevel string
	asJSON   bool
)

var rootCmd = &cobra.Command{
	Use:          "personaverify",
	Short:        "Cross-check LLM-generated personas across model backends",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (default config/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print the report as JSON instead of text")
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(selfcheckCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}
	logging.SetLevel(logLevel)

	path := cfgFile
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "config/config.toml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		cfg = config.Default()
	}
	cfg.ApplyEnv()
	return cfg
}

func buildVerifier(cfg *config.Config) (*core.Verifier, error) {
	gen := llm.NewPersonaGenerator(cfg.LLM, cfg.Prompts.Persona, cfg.Verification.BackendWeights)
	vcfg := cfg.VerificationModel()
	embedder, err := llm.NewEmbedder(context.Background(), vcfg.EmbeddingModel, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	return core.NewVerifier(gen, embedder, vcfg)
}

func loadSource(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file '%s': %w", path, err)
	}
	var source map[string]interface{}
	if err := json.Unmarshal(data, &source); err != nil {
		return nil, fmt.Errorf("failed to parse source file '%s': %w", path, err)
	}
	return source, nil
}

func printReport(report model.VerificationReport) error {
	if asJSON {
		out, err := report.JSON()
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}
	fmt.Print(report.Text())
	return nil
}
