package service

import (
	"github.com/mkline/tasknest/pkg/apperr"
	"github.com/mkline/tasknest/pkg/models"
)

// taskTransitions lists the permitted status edges. Anything absent is
// illegal, including a transition to the current status.
var taskTransitions = map[models.TaskStatus][]models.TaskStatus{
	models.TaskStatusNotStarted: {models.TaskStatusInProgress, models.TaskStatusCompleted, models.TaskStatusCancelled},
	models.TaskStatusInProgress: {models.TaskStatusNotStarted, models.TaskStatusCompleted, models.TaskStatusPaused},
	models.TaskStatusCompleted:  {models.TaskStatusNotStarted, models.TaskStatusInProgress},
	models.TaskStatusCancelled:  {models.TaskStatusNotStarted, models.TaskStatusInProgress},
	models.TaskStatusPaused:     {models.TaskStatusInProgress, models.TaskStatusCancelled},
	models.TaskStatusPostponed:  {models.TaskStatusNotStarted, models.TaskStatusInProgress},
	models.TaskStatusWaiting:    {models.TaskStatusNotStarted, models.TaskStatusInProgress},
}

func canTransition(from, to models.TaskStatus) bool {
	for _, next := range taskTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func checkTransition(from, to models.TaskStatus) error {
	if !canTransition(from, to) {
		return apperr.New(apperr.BusinessRule, "illegal status transition %s -> %s", from, to)
	}
	return nil
}
