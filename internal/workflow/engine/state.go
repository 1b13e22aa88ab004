package engine

import (
	"time"

	"github.com/kingrea/rayforge/internal/action"
	"github.com/kingrea/rayforge/internal/artifact"
	"github.com/kingrea/rayforge/internal/workflow/resolver"
	"github.com/kingrea/rayforge/internal/workflow/scheduler"
)

// RunStatus enumerates coarse invocation outcomes.
type RunStatus string

const (
	RunStatusUnknown   RunStatus = "unknown"
	RunStatusRunning   RunStatus = "running"
	RunStatusComplete  RunStatus = "complete"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// StatusSkipped marks targets that never ran because the chain stopped.
const StatusSkipped action.Status = "skipped"

// State captures the persisted snapshot of one invocation.
type State struct {
	RunID        string    `json:"run_id"`
	DefinitionID string    `json:"definition_id"`
	Requested    []string  `json:"requested"`
	Queue        []string  `json:"queue"`
	Status       RunStatus `json:"status"`
	// StatusReason names the target that stopped the chain.
	StatusReason string                          `json:"status_reason,omitempty"`
	ExitCode     int                             `json:"exit_code"`
	Nodes        []TargetStatus                  `json:"nodes"`
	Skipped      map[string]scheduler.SkipReason `json:"skipped,omitempty"`
	Runs         map[string]TargetRun            `json:"runs,omitempty"`
	StartedAt    time.Time                       `json:"started_at"`
	FinishedAt   time.Time                       `json:"finished_at"`
}

// TargetStatus exposes resolver metadata for a target after the run.
type TargetStatus struct {
	ID           string                    `json:"id"`
	Action       string                    `json:"action"`
	Name         string                    `json:"name"`
	Description  string                    `json:"description,omitempty"`
	State        resolver.NodeState        `json:"state"`
	Dependencies []string                  `json:"dependencies,omitempty"`
	Dependents   []string                  `json:"dependents,omitempty"`
	Error        string                    `json:"error,omitempty"`
	Artifacts    map[string]ArtifactStatus `json:"artifacts,omitempty"`
}

// ArtifactStatus mirrors resolver artifact evaluation for status consumers.
type ArtifactStatus struct {
	ID      string         `json:"id"`
	Pattern string         `json:"pattern"`
	State   artifact.State `json:"state"`
	Matches []string       `json:"matches,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// TargetRun persists the result of one target execution.
type TargetRun struct {
	Status     action.Status `json:"status"`
	Message    string        `json:"message,omitempty"`
	Error      string        `json:"error,omitempty"`
	ExitCode   int           `json:"exit_code,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration"`
}

// Failed returns the id of the target that stopped the run, if any.
func (s State) Failed() string {
	for _, id := range s.Queue {
		if run, ok := s.Runs[id]; ok && (run.Status == action.StatusFailed || run.Status == action.StatusCancelled) {
			return id
		}
	}
	return ""
}

func summarizeNodes(res *resolver.Resolver, queue []string) []TargetStatus {
	result := make([]TargetStatus, 0, len(queue))
	for _, id := range queue {
		node, ok := res.Node(id)
		if !ok {
			continue
		}
		status := TargetStatus{
			ID:           node.ID,
			Action:       node.Ref.ActionKind(),
			Name:         pickName(node),
			Description:  node.Ref.Description,
			State:        node.State,
			Dependencies: cloneStrings(node.Dependencies),
			Dependents:   cloneStrings(node.Dependents),
			Error:        errorString(node.Err),
		}
		if len(node.Artifacts) > 0 {
			status.Artifacts = make(map[string]ArtifactStatus, len(node.Artifacts))
			for key, report := range node.Artifacts {
				status.Artifacts[key] = ArtifactStatus{
					ID:      report.Ref.ID,
					Pattern: report.Ref.Pattern,
					State:   report.State,
					Matches: cloneStrings(report.Matches),
					Error:   errorString(report.Err),
				}
			}
		}
		result = append(result, status)
	}
	return result
}

func pickName(node *resolver.Node) string {
	if node.Ref.Name != "" {
		return node.Ref.Name
	}
	if node.Action != nil {
		if name := node.Action.Info().Name; name != "" {
			return name
		}
	}
	return node.ID
}

func cloneStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
