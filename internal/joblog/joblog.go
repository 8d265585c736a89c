// Package joblog retrieves job log output and artifact listings.
//
// Log storage moved between upstream API versions, so retrieval probes a
// fixed list of endpoints in order and returns the first hit together
// with the URL that served it.
package joblog

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/cibridge/cibridge-mcp/internal/upstream"
	"github.com/cibridge/cibridge-mcp/pkg/types"
)

// logEndpoints are the candidate log locations, probed in order.
var logEndpoints = []string{
	"/jobs/%s/logs",
	"/jobs/%s/artifacts/logs",
	"/jobs/%s/output",
	"/jobs/%s/console",
}

// Record carries a job's log output and where it was found.
type Record struct {
	JobID   string `json:"job_id"`
	JobName string `json:"job_name"`
	Logs    string `json:"logs"`
	LogURL  string `json:"log_url_used"`
}

// Service accesses job logs through one upstream client.
type Service struct {
	client *upstream.Client
}

// New creates a joblog service.
func New(client *upstream.Client) *Service {
	return &Service{client: client}
}

// Logs fetches the log output of one job. The job record is fetched first
// so the result carries the job name and a missing job fails as not-found
// rather than as an empty log.
func (s *Service) Logs(ctx context.Context, jobID string) (Record, error) {
	if jobID == "" {
		return Record{}, fmt.Errorf("%w: job id must not be empty", types.ErrInvalidArgument)
	}

	var wrapper map[string]any
	if err := s.client.GetJSON(ctx, "/jobs/"+jobID, nil, &wrapper); err != nil {
		return Record{}, fmt.Errorf("get job %s: %w", jobID, err)
	}
	name := "unknown"
	if job, ok := wrapper["job"].(map[string]any); ok {
		if n, ok := job["name"].(string); ok && n != "" {
			name = n
		}
	}

	for _, pattern := range logEndpoints {
		path := fmt.Sprintf(pattern, jobID)
		body, err := s.client.GetStream(ctx, path, nil)
		if err != nil {
			log.Debug().Str("path", path).Err(err).Msg("log endpoint miss")
			continue
		}
		content, err := io.ReadAll(body)
		_ = body.Close()
		if err != nil {
			return Record{}, fmt.Errorf("%w: read logs for job %s: %v", types.ErrUpstreamUnavailable, jobID, err)
		}
		return Record{JobID: jobID, JobName: name, Logs: string(content), LogURL: path}, nil
	}

	return Record{}, fmt.Errorf("%w: no logs found for job %s", types.ErrNotFound, jobID)
}

// Artifacts fetches the artifact listing of one job.
func (s *Service) Artifacts(ctx context.Context, jobID string) (types.Object, error) {
	if jobID == "" {
		return nil, fmt.Errorf("%w: job id must not be empty", types.ErrInvalidArgument)
	}

	var artifacts map[string]any
	if err := s.client.GetJSON(ctx, "/jobs/"+jobID+"/artifacts", nil, &artifacts); err != nil {
		return nil, fmt.Errorf("get artifacts for job %s: %w", jobID, err)
	}
	return types.Object{"job_id": jobID, "artifacts": artifacts}, nil
}
