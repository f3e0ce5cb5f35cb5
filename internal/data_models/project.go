package dto

type CreateProjectRequest struct {
	Title            string              `json:"title"`
	Description      string              `json:"description"`
	ExperienceReward int64               `json:"experience_reward"`
	Tasks            []CreateTaskRequest `json:"tasks"`
}

type UpdateProjectRequest struct {
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	ExperienceReward *int64  `json:"experience_reward"`
}

type SuggestSubtasksRequest struct {
	ProjectDescription string `json:"project_description"`
}

type SuggestSubtasksResponse struct {
	Subtasks []CreateTaskRequest `json:"subtasks"`
}
