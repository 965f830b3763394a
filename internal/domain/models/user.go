package models

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User backs login only; profile management lives outside this service.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         string
}
