// Package cli holds the worker's one-shot maintenance commands.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/hibiken/asynq"

	"github.com/medistock/medistock/internal/audit"
	"github.com/medistock/medistock/jobs"
)

// Enqueuer submits tasks.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Inspector reads queue state.
type Inspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

// JobsCLI runs manual job commands against the worker's queues.
type JobsCLI struct {
	client     Enqueuer
	inspector  Inspector
	auditQueue string
	retention  int
}

// NewJobsCLI constructs a JobsCLI. retentionDays is the default for prune.
func NewJobsCLI(client Enqueuer, inspector Inspector, auditQueue string, retentionDays int) *JobsCLI {
	if auditQueue == "" {
		auditQueue = jobs.QueueAudit
	}
	return &JobsCLI{client: client, inspector: inspector, auditQueue: auditQueue, retention: retentionDays}
}

// QueueStats summarises one queue.
type QueueStats struct {
	Queue     string `json:"queue"`
	Pending   int    `json:"pending"`
	Active    int    `json:"active"`
	Scheduled int    `json:"scheduled"`
	Retry     int    `json:"retry"`
	Archived  int    `json:"archived"`
}

// Run executes args[0] and returns the process exit code.
func (c *JobsCLI) Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		_, _ = fmt.Fprintln(stderr, "usage: worker <prune|stats> [flags]")
		return 2
	}
	switch args[0] {
	case "prune":
		return c.pruneCommand(ctx, args[1:], stdout, stderr)
	case "stats":
		return c.statsCommand(args[1:], stdout, stderr)
	}
	_, _ = fmt.Fprintf(stderr, "worker: unknown command %q\n", args[0])
	return 2
}

func (c *JobsCLI) pruneCommand(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("prune", flag.ContinueOnError)
	fs.SetOutput(stderr)
	days := fs.Int("days", c.retention, "delete activity older than this many days")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	info, err := c.TriggerPrune(ctx, *days)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "prune: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(stdout, "enqueued %s on %s (id %s)\n", info.Type, info.Queue, info.ID)
	return 0
}

func (c *JobsCLI) statsCommand(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(stderr)
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	stats, err := c.InspectQueues(jobs.QueueDefault, c.auditQueue)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "stats: %v\n", err)
		return 1
	}
	if *asJSON {
		if err := json.NewEncoder(stdout).Encode(stats); err != nil {
			_, _ = fmt.Fprintf(stderr, "stats: encode json: %v\n", err)
			return 1
		}
		return 0
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "QUEUE\tPENDING\tACTIVE\tSCHEDULED\tRETRY\tARCHIVED")
	for _, s := range stats {
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n", s.Queue, s.Pending, s.Active, s.Scheduled, s.Retry, s.Archived)
	}
	_ = tw.Flush()
	return 0
}

// TriggerPrune enqueues an immediate audit prune.
func (c *JobsCLI) TriggerPrune(ctx context.Context, retentionDays int) (*asynq.TaskInfo, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("jobs cli: client not configured")
	}
	if retentionDays <= 0 {
		return nil, fmt.Errorf("retention must be positive, got %d", retentionDays)
	}
	task, err := audit.NewPruneTask(retentionDays)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(c.auditQueue), asynq.MaxRetry(3))
}

// InspectQueues reports each queue. Queues that have never held a task are
// reported empty.
func (c *JobsCLI) InspectQueues(queues ...string) ([]QueueStats, error) {
	if c == nil || c.inspector == nil {
		return nil, errors.New("jobs cli: inspector not configured")
	}
	out := make([]QueueStats, 0, len(queues))
	for _, name := range queues {
		info, err := c.inspector.GetQueueInfo(name)
		if err != nil {
			if errors.Is(err, asynq.ErrQueueNotFound) {
				out = append(out, QueueStats{Queue: name})
				continue
			}
			return nil, fmt.Errorf("queue %s: %w", name, err)
		}
		out = append(out, QueueStats{
			Queue:     name,
			Pending:   info.Pending,
			Active:    info.Active,
			Scheduled: info.Scheduled,
			Retry:     info.Retry,
			Archived:  info.Archived,
		})
	}
	return out, nil
}
