package constants

type TaskStatus string

const (
	StatusActive   TaskStatus = "ACTIVE"
	StatusDone     TaskStatus = "DONE"
	StatusInactive TaskStatus = "INACTIVE"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusActive, StatusDone, StatusInactive:
		return true
	}
	return false
}

type TaskType string

const (
	TypeOnce      TaskType = "ONCE"
	TypeRecurrent TaskType = "RECURRENT"
)

func (t TaskType) Valid() bool {
	return t == TypeOnce || t == TypeRecurrent
}

// TaskCategory is a closed set; default catalog tasks are seeded per category.
type TaskCategory string

const (
	CategoryHealth        TaskCategory = "HEALTH"
	CategoryEntertainment TaskCategory = "ENTERTAINMENT"
	CategorySocial        TaskCategory = "SOCIAL"
	CategoryNature        TaskCategory = "NATURE"
	CategoryMiscellaneous TaskCategory = "MISCELLANEOUS"
)

var Categories = []TaskCategory{
	CategoryHealth,
	CategoryEntertainment,
	CategorySocial,
	CategoryNature,
	CategoryMiscellaneous,
}

func (c TaskCategory) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

// MaxExperienceReward caps the XP a single task or project can award.
const MaxExperienceReward = 1000
