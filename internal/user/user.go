package user

import "time"

// User is an account that can authenticate and submit expenses. The
// password hash never serializes; the department is referenced by id only.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	Role         string    `json:"role" gorm:"not null"`
	DepartmentID *int64    `json:"department_id,omitempty" gorm:"column:department_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
