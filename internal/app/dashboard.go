package app

import (
	"github.com/taskpanel/taskpanel/internal/core/domain"
)

const dashboardListSize = 5

// Stats counts tasks by status.
type Stats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"inProgress"`
	Pending    int `json:"pending"`
}

// Dashboard is the landing view for a signed-in user.
type Dashboard struct {
	Stats       Stats                  `json:"stats"`
	MyTasks     []domain.Task          `json:"myTasks"`
	MyTaskCount int                    `json:"myTaskCount"`
	RecentTasks []domain.Task          `json:"recentTasks"`
	Activity    []domain.ActivityEvent `json:"activity"`
	Connected   bool                   `json:"connected"`
	Backend     domain.Backend         `json:"backend,omitempty"`
}

// BuildDashboard summarises snap for user. Lists are capped at five entries
// in listing order.
func BuildDashboard(snap Snapshot, user domain.User, activity []domain.ActivityEvent, connected bool) Dashboard {
	d := Dashboard{
		MyTasks:     []domain.Task{},
		RecentTasks: head(snap.Tasks, dashboardListSize),
		Activity:    head(activity, dashboardListSize),
		Connected:   connected,
		Backend:     snap.Backend,
	}
	for _, t := range snap.Tasks {
		d.Stats.Total++
		switch t.Status {
		case domain.StatusCompleted:
			d.Stats.Completed++
		case domain.StatusInProgress:
			d.Stats.InProgress++
		case domain.StatusPending:
			d.Stats.Pending++
		}
		if t.AssignedTo == user.ID {
			d.MyTaskCount++
			if len(d.MyTasks) < dashboardListSize {
				d.MyTasks = append(d.MyTasks, t)
			}
		}
	}
	return d
}

func head[T any](items []T, n int) []T {
	out := make([]T, 0, min(len(items), n))
	return append(out, items[:min(len(items), n)]...)
}
