// Package entity defines the request forms, response envelope and error
// taxonomy shared by the web layer and the services.
package entity

// Msg is the response envelope of every endpoint. Status mirrors the HTTP status code.
type Msg struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// RegisterForm is the body of POST /register.
type RegisterForm struct {
	Name     string `json:"name" form:"name"`
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// LoginForm is the body of POST /login. LoginId is an email or a username.
type LoginForm struct {
	LoginId  string `json:"loginId" form:"loginId"`
	Password string `json:"password" form:"password"`
}

// TaskForm is the body of the task endpoints. Which fields are required
// depends on the endpoint.
type TaskForm struct {
	Id       string `json:"id" form:"id"`
	TaskName string `json:"task_name" form:"task_name"`
}
