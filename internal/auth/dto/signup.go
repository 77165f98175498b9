package dto

type SignupInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Gender      string `json:"gender"`
	TimeZone    string `json:"time_zone"`
}
