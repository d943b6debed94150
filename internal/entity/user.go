package entity

import "time"

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

type User struct {
	ID        string    `json:"id"`
	Login     string    `json:"login"`
	Email     string    `json:"email"`
	Role      string    `json:"role"` // USER, ADMIN
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
