// Package store persists verification reports in a graph database. The core
// pipeline never touches it: persistence is the caller's concern, wired in
// by the server and CLI entrypoints.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/REPPL/Persona-sub003/internal/core/model"
	"github.com/REPPL/Persona-sub003/internal/logging"
)

// ErrNotFound is returned when no report exists for the requested id.
var ErrNotFound = errors.New("report not found")

const defaultListLimit = 20

// ReportStore saves and loads verification reports. Reports are stored as a
// JSON payload plus the scalar fields used for lookups and ordering.
type ReportStore struct {
	exec   Executor
	logger logging.Logger
}

func NewReportStore(exec Executor) *ReportStore {
	return &ReportStore{
		exec:   exec,
		logger: logging.New("store"),
	}
}

// EnsureIndices creates the lookup indices. Failures are logged and skipped
// since the index may already exist.
func (s *ReportStore) EnsureIndices(ctx context.Context) error {
	queries := []string{
		"CREATE INDEX ON :Report(uuid);",
		"CREATE INDEX ON :Report(subject);",
		"CREATE INDEX ON :Subject(id);",
	}
	for _, q := range queries {
		if _, err := s.exec.ExecuteQuery(ctx, q, nil); err != nil {
			s.logger.Warnf("failed to create index '%s': %v", q, err)
		}
	}
	return nil
}

func (s *ReportStore) SaveReport(ctx context.Context, report model.VerificationReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report %s: %w", report.ID, err)
	}

	params := map[string]interface{}{
		"uuid":              report.ID,
		"subject":           report.Subject,
		"consistency_score": report.ConsistencyScore,
		"passed":            report.Passed,
		"strategy":          string(report.Config.VotingStrategy),
		"created_at":        report.CreatedAt.UTC().Format(time.RFC3339Nano),
		"payload":           string(payload),
	}
	if _, err := s.exec.ExecuteQuery(ctx, SaveReportQuery, params); err != nil {
		return fmt.Errorf("failed to save report %s: %w", report.ID, err)
	}
	return nil
}

func (s *ReportStore) GetReport(ctx context.Context, id string) (model.VerificationReport, error) {
	result, err := s.exec.ExecuteQuery(ctx, GetReportQuery, map[string]interface{}{"uuid": id})
	if err != nil {
		return model.VerificationReport{}, fmt.Errorf("failed to load report %s: %w", id, err)
	}
	if len(result.Records) == 0 {
		return model.VerificationReport{}, ErrNotFound
	}
	payload, _ := result.Records[0].Get("payload")
	return decodeReport(payload)
}

func (s *ReportStore) ListReports(ctx context.Context, subject string, limit int) ([]model.VerificationReport, error) {
	if limit < 1 {
		limit = defaultListLimit
	}
	result, err := s.exec.ExecuteQuery(ctx, ListReportsQuery, map[string]interface{}{
		"subject": subject,
		"limit":   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list reports for %s: %w", subject, err)
	}

	reports := make([]model.VerificationReport, 0, len(result.Records))
	for _, record := range result.Records {
		payload, _ := record.Get("payload")
		report, err := decodeReport(payload)
		if err != nil {
			s.logger.Warnf("skipping undecodable report for subject %s: %v", subject, err)
			continue
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (s *ReportStore) Close(ctx context.Context) error {
	return s.exec.Close(ctx)
}

func decodeReport(payload interface{}) (model.VerificationReport, error) {
	text, ok := payload.(string)
	if !ok {
		return model.VerificationReport{}, fmt.Errorf("report payload is not a string")
	}
	var report model.VerificationReport
	if err := json.Unmarshal([]byte(text), &report); err != nil {
		return model.VerificationReport{}, fmt.Errorf("failed to unmarshal report payload: %w", err)
	}
	return report, nil
}
