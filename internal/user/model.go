package user

type ValidateRequest struct {
	Nickname string `json:"nickname"`
}

type ValidateResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}
