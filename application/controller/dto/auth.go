package dto

type IssueTokenDTO struct {
	Passcode string `json:"passcode" validate:"required,max=100"`
	Role     string `json:"role" validate:"omitempty,oneof=admin device"`
	DeviceID string `json:"deviceID" validate:"omitempty,max=50"`
}
