package dto

// UserCreateRequest describes the payload for creating a new user account.
type UserCreateRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Role      string `json:"role" validate:"required,oneof=ADMIN TEACHER STUDENT"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Locale    string `json:"locale" validate:"omitempty,bcp47_language_tag"`
}
