package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"tomantrack/models"
)

// RefreshFunc runs one bulk price refresh
type RefreshFunc func(ctx context.Context) (models.RefreshSummary, error)

// TaskManager runs manually triggered bulk refreshes in the background and
// keeps their status around for polling.
type TaskManager struct {
	tasks       map[string]*models.RefreshTask
	taskQueue   chan *models.RefreshTask
	workers     int
	maxWorkers  int
	refreshFunc RefreshFunc
	mutex       sync.RWMutex
	stopChan    chan struct{}
	stopOnce    sync.Once
}

// NewTaskManager creates a task manager and starts its dispatch loop
func NewTaskManager(refreshFunc RefreshFunc, maxWorkers int) *TaskManager {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	tm := &TaskManager{
		tasks:       make(map[string]*models.RefreshTask),
		taskQueue:   make(chan *models.RefreshTask, 16),
		maxWorkers:  maxWorkers,
		refreshFunc: refreshFunc,
		stopChan:    make(chan struct{}),
	}

	go tm.processTasks()
	log.Printf("Task manager started with %d max workers", maxWorkers)
	return tm
}

// SubmitTask queues a new bulk refresh task and returns a snapshot of it.
// When the queue is full the returned task is already failed.
func (tm *TaskManager) SubmitTask() models.RefreshTask {
	task := models.NewRefreshTask()

	tm.mutex.Lock()
	tm.tasks[task.ID] = task
	tm.mutex.Unlock()

	select {
	case tm.taskQueue <- task:
		log.Printf("Refresh task %s submitted", task.ID)
	default:
		tm.failTask(task, "Task queue is full")
		log.Printf("Failed to submit task %s - queue full", task.ID)
	}

	return tm.snapshot(task)
}

// GetTask returns a copy of the task with the given ID. Workers keep
// mutating the stored task, so callers never see the live pointer.
func (tm *TaskManager) GetTask(taskID string) (models.RefreshTask, bool) {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	task, exists := tm.tasks[taskID]
	if !exists {
		return models.RefreshTask{}, false
	}
	return *task, true
}

// failTask marks a task failed under the manager's lock
func (tm *TaskManager) failTask(task *models.RefreshTask, errMsg string) {
	tm.mutex.Lock()
	task.Fail(errMsg)
	tm.mutex.Unlock()
}

// snapshot copies a task's current state under the manager's lock
func (tm *TaskManager) snapshot(task *models.RefreshTask) models.RefreshTask {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()
	return *task
}

// CleanupOldTasks removes completed tasks older than maxAge
func (tm *TaskManager) CleanupOldTasks(maxAge time.Duration) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for taskID, task := range tm.tasks {
		if task.IsCompleted() && task.CreatedAt.Before(cutoff) {
			delete(tm.tasks, taskID)
		}
	}
}

// processTasks dispatches queued tasks to workers
func (tm *TaskManager) processTasks() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case task := <-tm.taskQueue:
			tm.mutex.Lock()
			if tm.workers < tm.maxWorkers {
				tm.workers++
				tm.mutex.Unlock()
				go tm.worker(task)
			} else {
				tm.mutex.Unlock()
				// At capacity: put it back after a beat
				go func() {
					time.Sleep(time.Second)
					select {
					case tm.taskQueue <- task:
					default:
						tm.failTask(task, "System overloaded, unable to process task")
					}
				}()
			}

		case <-ticker.C:
			tm.CleanupOldTasks(time.Hour)

		case <-tm.stopChan:
			log.Println("Task manager stopped")
			return
		}
	}
}

// worker runs a single refresh task
func (tm *TaskManager) worker(task *models.RefreshTask) {
	defer func() {
		tm.mutex.Lock()
		tm.workers--
		tm.mutex.Unlock()
	}()

	tm.mutex.Lock()
	task.Start()
	tm.mutex.Unlock()

	summary, err := tm.refreshFunc(context.Background())
	if err != nil {
		tm.failTask(task, "Refresh failed: "+err.Error())
		return
	}

	tm.mutex.Lock()
	task.Complete(&summary)
	duration := task.Duration()
	tm.mutex.Unlock()

	log.Printf("Refresh task %s completed in %v: %d checked, %d succeeded, %d failed",
		task.ID, duration, summary.Checked, summary.Succeeded, summary.Failed)
}

// Stop stops the task manager. Safe to call more than once.
func (tm *TaskManager) Stop() {
	tm.stopOnce.Do(func() {
		close(tm.stopChan)
	})
}

// GetStats returns task manager statistics
func (tm *TaskManager) GetStats() map[string]interface{} {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	statusCounts := make(map[string]int)
	for _, task := range tm.tasks {
		statusCounts[string(task.Status)]++
	}

	return map[string]interface{}{
		"total_tasks":     len(tm.tasks),
		"active_workers":  tm.workers,
		"max_workers":     tm.maxWorkers,
		"queue_size":      len(tm.taskQueue),
		"tasks_by_status": statusCounts,
	}
}
