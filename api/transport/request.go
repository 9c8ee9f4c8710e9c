package transport

// SessionRequest carries the tokens from the OAuth redirect.
type SessionRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type CreateTaskRequest struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	DueDate           string `json:"due_date"`
	AssignToProfileID int64  `json:"assign_to_profile_id"`
}

type AssignTaskRequest struct {
	ProfileID int64 `json:"profile_id"`
}

type CompleteTaskRequest struct {
	IsComplete bool `json:"is_complete"`
}

type PushTokenRequest struct {
	Token string `json:"expo_push_token"`
}
