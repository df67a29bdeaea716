package domain

// User — пользователь, вернувшийся с бэкенда при входе.
type User struct {
	ID     int64
	Name   string
	Email  string
	Branch string
}
