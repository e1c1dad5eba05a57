package models

// Task is one of the six fixed daily requirements of the challenge.
// The set is closed: cache entries, stored photo labels, and remote
// document fields all correlate through a task's storage key, so the
// mapping must be total and stable.
type Task int

const (
	TaskProgressPic Task = iota
	TaskWorkout1
	TaskWorkout2
	TaskReading
	TaskWater
	TaskDiet
)

// TaskCount is the number of daily task slots. Completion scoring
// expects one photo per slot.
const TaskCount = 6

// AllTasks lists every task in display order.
var AllTasks = [TaskCount]Task{
	TaskProgressPic,
	TaskWorkout1,
	TaskWorkout2,
	TaskReading,
	TaskWater,
	TaskDiet,
}

// StorageKey returns the stable key used for cache entries, photo
// labels, and remote mirror fields.
func (t Task) StorageKey() string {
	switch t {
	case TaskProgressPic:
		return "progress_pic"
	case TaskWorkout1:
		return "workout_1"
	case TaskWorkout2:
		return "workout_2"
	case TaskReading:
		return "reading"
	case TaskWater:
		return "water"
	case TaskDiet:
		return "diet"
	default:
		return "unknown"
	}
}

// Title returns the human-readable task name.
func (t Task) Title() string {
	switch t {
	case TaskProgressPic:
		return "Progress Pic"
	case TaskWorkout1:
		return "Workout 1"
	case TaskWorkout2:
		return "Workout 2"
	case TaskReading:
		return "Reading"
	case TaskWater:
		return "Water"
	case TaskDiet:
		return "Diet"
	default:
		return "Unknown"
	}
}

// TaskByKey resolves a storage key back to its task. The second return
// is false for keys outside the fixed catalog.
func TaskByKey(key string) (Task, bool) {
	for _, t := range AllTasks {
		if t.StorageKey() == key {
			return t, true
		}
	}
	return 0, false
}

// LegacyKeyOrder is the positional order older remote documents used
// for their photoURLs array, kept for the fetch fallback.
var LegacyKeyOrder = []string{"progress_pic", "workout_1", "workout_2", "reading", "water", "diet"}
