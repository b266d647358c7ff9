package dto

type UpdateProfileRequest struct {
	UserName *string `json:"user_name" validate:"omitempty,min=3,max=50"`
	Phone    *string `json:"phone" validate:"omitempty,max=20"`
}
