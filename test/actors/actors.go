// Package actors holds the concurrent workloads for the stress harness.
// Each actor loops until stop closes, hammering one slice of the lead
// lifecycle.
package actors

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"leadflow/access"
	"leadflow/channel"
	"leadflow/engine"
	"leadflow/lead"
	"leadflow/task"
)

var streets = []string{"Oak Ave", "Elm St", "Maple Dr", "Birch Ln", "Cedar Ct"}

var foundations = []string{"basement", "crawlspace", "slab"}

// Canvasser creates leads under its own display name.
func Canvasser(ctx context.Context, eng *engine.Engine, name string, stop <-chan struct{}) error {
	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		form := lead.FormData{
			Name:           fmt.Sprintf("Homeowner %s-%d", name, i),
			Address:        fmt.Sprintf("%d %s", 1+rand.Intn(9999), streets[rand.Intn(len(streets))]),
			FoundationType: foundations[rand.Intn(len(foundations))],
			Phone:          fmt.Sprintf("555-01%02d", rand.Intn(100)),
		}
		if _, _, err := eng.CreateLead(ctx, form, name); err != nil {
			return fmt.Errorf("canvasser %s: %w", name, err)
		}
		time.Sleep(time.Duration(10+rand.Intn(20)) * time.Millisecond)
	}
}

// Confirmer drains open verification tasks, marking leads verified and
// completing the task. Two confirmers racing on the same task is the
// contended path and must stay idempotent.
func Confirmer(ctx context.Context, eng *engine.Engine, name string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		open := eng.Tasks.List(ctx, true)
		if len(open) > 0 {
			pick := open[rand.Intn(len(open))]
			if _, err := eng.Leads.UpdateField(ctx, pick.CustomerID, "verified", true, name, access.RoleConfirmation); err != nil {
				if !errors.Is(err, lead.ErrNotFound) {
					return fmt.Errorf("confirmer %s: verify %s: %w", name, pick.CustomerID, err)
				}
			}
			if _, err := eng.Tasks.Complete(ctx, pick.ID, name); err != nil {
				if !errors.Is(err, task.ErrNotFound) {
					return fmt.Errorf("confirmer %s: complete %s: %w", name, pick.ID, err)
				}
			}
		}
		time.Sleep(time.Duration(20+rand.Intn(40)) * time.Millisecond)
	}
}

// Editor plays a sales manager updating scheduling fields on random leads,
// racing other editors for last-write-wins.
func Editor(ctx context.Context, eng *engine.Engine, name string, stop <-chan struct{}) error {
	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		all := eng.Leads.List(ctx, name, name, access.RoleSalesManager, lead.FilterAll)
		if len(all) > 0 {
			pick := all[rand.Intn(len(all))]
			note := fmt.Sprintf("note %s-%d", name, i)
			if _, err := eng.Leads.UpdateField(ctx, pick.ID, "workNotes", note, name, access.RoleSalesManager); err != nil {
				if !errors.Is(err, lead.ErrNotFound) {
					return fmt.Errorf("editor %s: %w", name, err)
				}
			}
		}
		time.Sleep(time.Duration(15+rand.Intn(35)) * time.Millisecond)
	}
}

// Messenger posts into the default open channel.
func Messenger(ctx context.Context, dir *channel.Directory, name string, stop <-chan struct{}) error {
	everyone := dir.ListVisible(ctx, name)
	if len(everyone) == 0 {
		return fmt.Errorf("messenger %s: no visible channels", name)
	}
	target := everyone[0].ID
	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}
		if _, err := dir.Post(ctx, target, fmt.Sprintf("update %d from %s", i, name), name); err != nil {
			return fmt.Errorf("messenger %s: %w", name, err)
		}
		time.Sleep(time.Duration(50+rand.Intn(100)) * time.Millisecond)
	}
}
