package models

import (
	"time"
)

// Host - учетная запись диспетчера терминала
type Host struct {
	ID           uint      `json:"id" gorm:"primaryKey;column:id;autoIncrement"`
	Email        string    `json:"email" gorm:"column:email;unique;not null;type:varchar(255)"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null;type:varchar(255)"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime;type:timestamp with time zone"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime;type:timestamp with time zone"`
}

// HostResponse - представление учетной записи без хэша пароля
type HostResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse преобразует учетную запись в ответ API
func (h *Host) ToResponse() HostResponse {
	return HostResponse{
		ID:        h.ID,
		Email:     h.Email,
		CreatedAt: h.CreatedAt,
	}
}
