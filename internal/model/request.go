package model

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ViewRequest struct {
	View string `json:"view"`
}
