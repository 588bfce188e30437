package services

import (
	"github.com/sahilm/fuzzy"

	"taskroll/internal/domain"
)

// FilterTasks narrows a candidate list by fuzzy-matching the query against
// task descriptions. An empty query returns the list unchanged.
func FilterTasks(tasks []domain.Task, query string) []domain.Task {
	if query == "" {
		return tasks
	}

	descriptions := make([]string, len(tasks))
	for i, task := range tasks {
		descriptions[i] = task.Description
	}

	matches := fuzzy.Find(query, descriptions)

	result := make([]domain.Task, 0, len(matches))
	for _, match := range matches {
		result = append(result, tasks[match.Index])
	}
	return result
}
