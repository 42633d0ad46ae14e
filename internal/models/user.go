package models

const RoleAdmin = "admin"
const RoleUser = "user"

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	IsActive     bool   `json:"-"`
}
