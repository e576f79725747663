// Package oracles checks lifecycle invariants over the live in-memory state
// and the Postgres mirror while actors run.
package oracles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"leadflow/access"
	"leadflow/engine"
	"leadflow/lead"
	"leadflow/task"
)

// Run evaluates every oracle and returns the name and detail of the first
// violation, or empty strings when all hold. settled marks the final pass
// after actors stopped; a freshly created lead briefly has no verification
// task, so the completeness half of O2 only holds once writes quiesce.
func Run(ctx context.Context, eng *engine.Engine, pool *pgxpool.Pool, settled bool) (string, string, error) {
	leads := eng.Leads.List(ctx, "oracle", "oracle", access.RoleAdmin, lead.FilterAll)
	tasks := eng.Tasks.List(ctx, false)

	if name, detail := auditTrailSeeded(leads); name != "" {
		return name, detail, nil
	}
	if name, detail := oneVerificationTaskPerLead(leads, tasks, settled); name != "" {
		return name, detail, nil
	}
	if name, detail := completionStamps(tasks); name != "" {
		return name, detail, nil
	}
	if pool != nil {
		return mirrorNotAhead(ctx, pool, len(leads), len(tasks))
	}
	return "", "", nil
}

// Every lead carries its creation entry as history entry zero.
func auditTrailSeeded(leads []lead.Lead) (string, string) {
	for _, l := range leads {
		if l.History.Len() == 0 {
			return "O1_audit_seeded", fmt.Sprintf("lead %s has an empty history", l.ID)
		}
		entries := l.History.Entries()
		if entries[0].Action != "homeowner created" {
			return "O1_audit_seeded", fmt.Sprintf("lead %s first entry is %q", l.ID, entries[0].Action)
		}
	}
	return "", ""
}

// Lead creation dispatches exactly one verification task, never a
// duplicate, and once settled never zero.
func oneVerificationTaskPerLead(leads []lead.Lead, tasks []task.Task, settled bool) (string, string) {
	perLead := make(map[string]int, len(leads))
	for _, t := range tasks {
		if t.Type == task.TypeVerification {
			perLead[t.CustomerID]++
		}
	}
	for _, l := range leads {
		n := perLead[l.ID]
		if n > 1 {
			return "O2_one_verification_task", fmt.Sprintf("lead %s has %d verification tasks", l.ID, n)
		}
		if settled && n == 0 {
			return "O2_one_verification_task", fmt.Sprintf("lead %s has no verification task", l.ID)
		}
	}
	return "", ""
}

// Completed tasks carry both completion stamps; open tasks carry neither.
func completionStamps(tasks []task.Task) (string, string) {
	for _, t := range tasks {
		if t.Completed && (t.CompletedAt == nil || t.CompletedBy == "") {
			return "O3_completion_stamps", fmt.Sprintf("task %s completed without stamps", t.ID)
		}
		if !t.Completed && (t.CompletedAt != nil || t.CompletedBy != "") {
			return "O3_completion_stamps", fmt.Sprintf("task %s open but stamped", t.ID)
		}
	}
	return "", ""
}

// The mirror is fed only from accepted in-memory writes, so under chaos it
// may lag but can never hold more rows than the source of truth.
func mirrorNotAhead(ctx context.Context, pool *pgxpool.Pool, leadCount, taskCount int) (string, string, error) {
	var mirrored int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM mirror_leads`).Scan(&mirrored); err != nil {
		return "", "", fmt.Errorf("oracles: count mirror_leads: %w", err)
	}
	if mirrored > leadCount {
		return "O4_mirror_not_ahead", fmt.Sprintf("mirror_leads has %d rows, memory has %d leads", mirrored, leadCount), nil
	}
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM mirror_tasks`).Scan(&mirrored); err != nil {
		return "", "", fmt.Errorf("oracles: count mirror_tasks: %w", err)
	}
	if mirrored > taskCount {
		return "O4_mirror_not_ahead", fmt.Sprintf("mirror_tasks has %d rows, memory has %d tasks", mirrored, taskCount), nil
	}
	return "", "", nil
}
