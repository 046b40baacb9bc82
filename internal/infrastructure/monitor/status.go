package monitor

import "time"

type Status struct {
	TaskStore bool      `json:"task_store"`
	Redis     bool      `json:"redis"`
	LastCheck time.Time `json:"last_check"`
}
