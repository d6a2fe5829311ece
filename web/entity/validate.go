package entity

import (
	"encoding/json"
	"errors"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Accepted lengths, in characters, inclusive.
const (
	MinUsernameLen = 4
	MaxUsernameLen = 99
	MinPasswordLen = 6
	MaxPasswordLen = 99
	MinTaskNameLen = 4
	MaxTaskNameLen = 99
)

var validate = validator.New()

// IsEmail reports whether s is a syntactically valid email address.
func IsEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

func lengthBetween(s string, min, max int) bool {
	n := utf8.RuneCountInString(s)
	return n >= min && n <= max
}

func invalid(key string, params ...string) *Error {
	return NewError(KindValidation, key, params...)
}

// CheckValid returns the first failing registration rule, or nil.
func (f *RegisterForm) CheckValid() error {
	if f.Name == "" || f.Username == "" || f.Email == "" || f.Password == "" {
		return invalid("validation.missingCredentials")
	}
	if !IsEmail(f.Email) {
		return invalid("validation.invalidEmail")
	}
	if !lengthBetween(f.Username, MinUsernameLen, MaxUsernameLen) {
		return invalid("validation.usernameLength")
	}
	if !lengthBetween(f.Password, MinPasswordLen, MaxPasswordLen) {
		return invalid("validation.passwordLength")
	}
	return nil
}

// CheckValid returns the first failing login rule, or nil.
func (f *LoginForm) CheckValid() error {
	if f.LoginId == "" || f.Password == "" {
		return invalid("validation.missingCredentials")
	}
	if !lengthBetween(f.LoginId, MinUsernameLen, MaxUsernameLen) {
		return invalid("validation.loginIdLength")
	}
	if !lengthBetween(f.Password, MinPasswordLen, MaxPasswordLen) {
		return invalid("validation.passwordLength")
	}
	return nil
}

// CheckTaskName validates the task_name field.
func (f *TaskForm) CheckTaskName() error {
	if f.TaskName == "" {
		return invalid("validation.emptyTaskName")
	}
	if !lengthBetween(f.TaskName, MinTaskNameLen, MaxTaskNameLen) {
		return invalid("validation.taskNameLength")
	}
	return nil
}

// BindError classifies a request body decoding failure. A JSON value of the
// wrong type is reported against its field.
func BindError(err error) *Error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return &Error{Kind: KindValidation, Key: "validation.invalidType", Params: []string{"Field==" + typeErr.Field}, Err: err}
	}
	return WrapError(KindValidation, "validation.invalidBody", err)
}
