package postgres

import (
	"gorm.io/gorm"

	"github.com/fintech-enterprise/expense-tracker/internal/auth"
)

type userRow struct {
	ID           int64  `gorm:"primaryKey"`
	Username     string `gorm:"column:username"`
	PasswordHash string `gorm:"column:password_hash"`
	Role         string `gorm:"column:role"`
	DepartmentID *int64 `gorm:"column:department_id"`
}

func (userRow) TableName() string {
	return "users"
}

// AuthRepository implements auth.UserRepository using GORM.
type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) auth.UserRepository {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) GetCredentials(username string) (string, int64, error) {
	var row userRow
	if err := r.db.Where("username = ?", username).First(&row).Error; err != nil {
		return "", 0, err
	}
	return row.PasswordHash, row.ID, nil
}

func (r *AuthRepository) GetUserByID(userID int64) (*auth.User, error) {
	var row userRow
	if err := r.db.Where("id = ?", userID).First(&row).Error; err != nil {
		return nil, err
	}
	return &auth.User{
		ID:           row.ID,
		Username:     row.Username,
		Role:         row.Role,
		DepartmentID: row.DepartmentID,
	}, nil
}
