// Package seed installs the default mission catalog users clone tasks from.
package seed

import (
	"context"
	"log/slog"

	"nextlevel.com/nextlevel/internal/constants"
	model "nextlevel.com/nextlevel/internal/models"
	repository "nextlevel.com/nextlevel/internal/repositories"
)

type mission struct {
	title       string
	description string
	category    constants.TaskCategory
	difficulty  int
	reward      int64
	// every is the recurrence interval in days; 0 means a one-off mission.
	every int
}

var catalog = []mission{
	{"Walk for 30 minutes", "Take a 30 minute walk for your cardiovascular health", constants.CategoryHealth, 2, 25, 7},
	{"Drink 8 glasses of water", "Stay hydrated with 8 glasses of water through the day", constants.CategoryHealth, 1, 15, 1},
	{"Meditate for 10 minutes", "Spend 10 minutes meditating to lower stress", constants.CategoryHealth, 2, 20, 1},
	{"Do 50 push-ups", "Do 50 push-ups to build strength", constants.CategoryHealth, 3, 40, 0},

	{"Watch a full movie", "Enjoy a movie from start to finish", constants.CategoryEntertainment, 1, 20, 0},
	{"Play video games for an hour", "Take an hour for your favourite games", constants.CategoryEntertainment, 1, 15, 3},
	{"Read a book chapter", "Read at least one chapter of any book you like", constants.CategoryEntertainment, 2, 25, 2},
	{"Draw or paint", "Make a piece of art, drawing or painting", constants.CategoryEntertainment, 2, 30, 0},

	{"Call a friend", "Reach out to a friend and spend time talking", constants.CategorySocial, 1, 20, 7},
	{"Go out with friends", "Spend quality time with your friends", constants.CategorySocial, 2, 35, 14},
	{"Help a neighbour", "Lend a hand to someone in your community", constants.CategorySocial, 2, 30, 0},
	{"Call your family", "Get in touch with family and share a moment", constants.CategorySocial, 1, 25, 7},

	{"Plant a seed", "Plant a seed in a pot or in the garden", constants.CategoryNature, 1, 25, 0},
	{"Visit a park", "Go to a park and enjoy the outdoors", constants.CategoryNature, 1, 20, 7},
	{"Clean up a green area", "Pick up litter in a park or nearby natural area", constants.CategoryNature, 2, 35, 0},
	{"Watch birds", "Spend time spotting and counting birds", constants.CategoryNature, 2, 20, 7},

	{"Learn something new", "Spend time learning a new skill", constants.CategoryMiscellaneous, 3, 50, 0},
	{"Cook a new recipe", "Cook something you have never made before", constants.CategoryMiscellaneous, 2, 30, 0},
	{"Solve a puzzle", "Finish a puzzle or crack a hard riddle", constants.CategoryMiscellaneous, 2, 25, 0},
	{"Tidy up your space", "Sort and organise one area of your home", constants.CategoryMiscellaneous, 1, 15, 7},
}

// Tasks returns the catalog as template tasks ready to insert.
func Tasks() []model.Task {
	tasks := make([]model.Task, 0, len(catalog))
	for _, m := range catalog {
		task := model.Task{
			Title:            m.title,
			Description:      m.description,
			Category:         m.category,
			Type:             constants.TypeOnce,
			Status:           constants.StatusActive,
			Difficulty:       m.difficulty,
			ExperienceReward: m.reward,
			IsDefault:        true,
		}
		if m.every > 0 {
			days := m.every
			task.Type = constants.TypeRecurrent
			task.RecurrenceIntervalDays = &days
		}
		tasks = append(tasks, task)
	}
	return tasks
}

// Run inserts the catalog unless template tasks already exist. It returns
// the number of tasks inserted.
func Run(ctx context.Context, store *repository.Store, logger *slog.Logger) (int, error) {
	existing, err := store.Tasks.CountDefaults(ctx)
	if err != nil {
		return 0, err
	}
	if existing > 0 {
		logger.InfoContext(ctx, "default catalog already present", slog.Int64("tasks", existing))
		return 0, nil
	}

	tasks := Tasks()
	err = store.Transaction(ctx, func(tx *repository.Store) error {
		for i := range tasks {
			if err := tx.Tasks.Create(ctx, &tasks[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.InfoContext(ctx, "default catalog seeded", slog.Int("tasks", len(tasks)))
	return len(tasks), nil
}
