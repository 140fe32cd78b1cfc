package models

import "strings"

type User struct {
	ID               string `json:"id"`
	TelegramID       int64  `json:"telegram_id"`
	TelegramUsername string `json:"telegram_username,omitempty"`
	FirstName        string `json:"first_name,omitempty"`
	LastName         string `json:"last_name,omitempty"`
	PhoneNumber      string `json:"phone_number,omitempty"`
	AccountType      string `json:"account_type,omitempty"`
	StorageUsed      int64  `json:"storage_used"`
	CreatedAt        string `json:"created_at,omitempty"`
	LastLogin        string `json:"last_login,omitempty"`
}

// DisplayName picks the most readable identifier available.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	if u.TelegramUsername != "" {
		return "@" + u.TelegramUsername
	}
	if u.PhoneNumber != "" {
		return u.PhoneNumber
	}
	return u.ID
}

// TelegramLogin is the payload of /auth/telegram as produced by the
// Telegram login widget.
type TelegramLogin struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
	AuthDate  int64  `json:"auth_date,omitempty"`
	Hash      string `json:"hash,omitempty"`
}

type Folder struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ParentID  string `json:"parent_id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

type TypeStats struct {
	Count int   `json:"count"`
	Size  int64 `json:"size"`
}

type StorageStats struct {
	TotalFiles         int                  `json:"total_files"`
	TotalSize          int64                `json:"total_size"`
	TotalSizeFormatted string               `json:"total_size_formatted"`
	ByType             map[string]TypeStats `json:"by_type"`
}

// Session is the result of a successful login.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
