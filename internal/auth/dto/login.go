package dto

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TimeZone string `json:"time_zone"`
}

type LogoutInput struct {
	UserID string `json:"user_id"`
}
