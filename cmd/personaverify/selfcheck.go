package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	selfSubject string
	selfSource  string
	selfBackend string
	selfSamples int
)

var selfcheckCmd = &cobra.Command{
	Use:   "selfcheck",
	Short: "Resample one backend and check that it agrees with itself",
	RunE:  runSelfcheck,
}

func init() {
	selfcheckCmd.Flags().StringVar(&selfSubject, "subject", "", "subject identifier")
	selfcheckCmd.Flags().StringVar(&selfSource, "source", "", "path to the source data JSON file")
	selfcheckCmd.Flags().StringVar(&selfBackend, "backend", "", "backend identifier, e.g. openai:gpt-4o or llama3:8b")
	selfcheckCmd.Flags().IntVar(&selfSamples, "samples", 3, "number of independent samples")
	_ = selfcheckCmd.MarkFlagRequired("subject")
	_ = selfcheckCmd.MarkFlagRequired("source")
	_ = selfcheckCmd.MarkFlagRequired("backend")
}

func runSelfcheck(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	verifier, err := buildVerifier(cfg)
	if err != nil {
		return err
	}
	source, err := loadSource(selfSource)
	if err != nil {
		return err
	}

	report := verifier.VerifySelfConsistency(cmd.Context(), selfSubject, source, selfBackend, selfSamples)
	if err := printReport(report); err != nil {
		return err
	}
	if !report.Passed {
		os.Exit(1)
	}
	return nil
}
