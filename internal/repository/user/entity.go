package user

import (
	"time"

	"github.com/google/uuid"
	"github.com/xpanvictor/xarvis/internal/domains/user"
	"gorm.io/gorm"
)

// UserEntity is the GORM row shape for a user.
type UserEntity struct {
	ID          string         `gorm:"primaryKey;type:char(36);not null"`
	DisplayName string         `gorm:"column:display_name;type:varchar(255);not null"`
	Email       string         `gorm:"uniqueIndex;type:varchar(191);not null"`
	AvatarURL   *string        `gorm:"column:avatar_url;type:varchar(1000)"`
	Password    string         `gorm:"column:password_hash;type:char(60);not null"`
	CreatedAt   time.Time      `gorm:"autoCreateTime(3)"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime(3)"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (UserEntity) TableName() string { return "users" }

func (u *UserEntity) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

func (u *UserEntity) ToDomain() *user.User {
	return &user.User{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		AvatarURL:   u.AvatarURL,
		Password:    u.Password,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// FromDomain converts domain User to UserEntity.
func (u *UserEntity) FromDomain(domainUser *user.User) {
	u.ID = domainUser.ID
	u.DisplayName = domainUser.DisplayName
	u.Email = domainUser.Email
	u.AvatarURL = domainUser.AvatarURL
	u.Password = domainUser.Password
	u.CreatedAt = domainUser.CreatedAt
	u.UpdatedAt = domainUser.UpdatedAt
}

// NewUserEntityFromDomain creates a new UserEntity from a domain User.
func NewUserEntityFromDomain(domainUser *user.User) *UserEntity {
	entity := &UserEntity{}
	entity.FromDomain(domainUser)
	return entity
}
