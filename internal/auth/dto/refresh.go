package dto

type RefreshInput struct {
	RefreshToken string `json:"refreshToken"`
	UserID       string `json:"user_id"`
}

type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}
