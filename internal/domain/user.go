package domain

type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"`
	FullName string `json:"fullName"`
	IsAdmin  bool   `json:"isAdmin"`
}
