package model

import (
	"strings"
	"time"
)

// ProfileEdit is a sparse patch; nil fields are left unchanged.
type ProfileEdit struct {
	Name     *string
	Surname  *string
	Username *string
}

func (e ProfileEdit) Empty() bool {
	return e.Name == nil && e.Surname == nil && e.Username == nil
}

// ProfileFields are the values currently in the edit form. Blank means untouched.
type ProfileFields struct {
	Name     string
	Surname  string
	Username string
}

// DiffProfile keeps only the fields that differ from the current identity.
func DiffProfile(current Identity, edited ProfileFields) ProfileEdit {
	edit := ProfileEdit{}
	if v, ok := changed(current.Name, edited.Name); ok {
		edit.Name = &v
	}
	if v, ok := changed(current.Surname, edited.Surname); ok {
		edit.Surname = &v
	}
	if v, ok := changed(current.Username, edited.Username); ok {
		edit.Username = &v
	}
	return edit
}

func changed(current, edited string) (string, bool) {
	edited = strings.TrimSpace(edited)
	if edited == "" || edited == current {
		return "", false
	}
	return edited, true
}

// Profile is the stored user record.
type Profile struct {
	ID          string
	Email       string
	Name        string
	Surname     string
	IsActive    bool
	IsSuperuser bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Registration struct {
	Name            string
	Surname         string
	Email           string
	Password        string
	ConfirmPassword string
}
