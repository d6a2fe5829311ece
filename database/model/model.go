// Package model contains the persisted records of the todo server.
package model

// User is a registered account. Records are never updated or deleted.
type User struct {
	Id       string `json:"id" gorm:"primaryKey;size:36"`
	Name     string `json:"name" gorm:"not null"`
	Username string `json:"username" gorm:"uniqueIndex;not null"`
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Password string `json:"-" gorm:"not null"` // bcrypt hash
}

// Snapshot returns the part of the user that is copied into a session at login.
func (u *User) Snapshot() UserSnapshot {
	return UserSnapshot{
		Id:       u.Id,
		Name:     u.Name,
		Username: u.Username,
		Email:    u.Email,
	}
}

// UserSnapshot is the authenticated user as seen by a session. It is not
// refreshed if the user record changes.
type UserSnapshot struct {
	Id       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Task is a to-do item owned by the user whose username it carries.
type Task struct {
	Id          string `json:"id" gorm:"primaryKey;size:36"`
	TaskName    string `json:"task_name" gorm:"not null"`
	IsCompleted bool   `json:"isCompleted" gorm:"not null"`
	Username    string `json:"username" gorm:"index;not null"`
}

// AccessRecord holds the time of a user's last permitted rate-limited request.
type AccessRecord struct {
	UserId      string `json:"userId" gorm:"primaryKey;size:36"`
	LastRequest int64  `json:"lastRequest" gorm:"not null"` // unix milliseconds
}

// Session is a server-side login session. Username mirrors the snapshot in
// Data so that all sessions of one user can be removed with a single query.
type Session struct {
	Id        string `gorm:"primaryKey;size:64"`
	Username  string `gorm:"index"`
	Data      []byte
	ExpiresAt int64 `gorm:"index;not null"` // unix seconds
}
