package projects

// CreateProjectRequest is the payload for creating a project.
type CreateProjectRequest struct {
	Title       string `json:"title" example:"Website redesign"`
	Description string `json:"description" example:"Q3 marketing site refresh"`
}

// UpdateProjectRequest is the payload for partial project updates. Only
// fields present in the input are applied; omitted fields keep their prior
// values.
type UpdateProjectRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}
