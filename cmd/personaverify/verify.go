package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	verifySubject string
	verifySource  string
	verifyCount   int
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify one subject across all configured backends",
	RunE:  runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifySubject, "subject", "", "subject identifier")
	verifyCmd.Flags().StringVar(&verifySource, "source", "", "path to the source data JSON file")
	verifyCmd.Flags().IntVar(&verifyCount, "count", 0, "candidate outputs per backend (0 uses the configured value)")
	_ = verifyCmd.MarkFlagRequired("subject")
	_ = verifyCmd.MarkFlagRequired("source")
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	verifier, err := buildVerifier(cfg)
	if err != nil {
		return err
	}
	source, err := loadSource(verifySource)
	if err != nil {
		return err
	}

	report := verifier.Verify(cmd.Context(), verifySubject, source, verifyCount)
	if err := printReport(report); err != nil {
		return err
	}
	if !report.Passed {
		os.Exit(1)
	}
	return nil
}
