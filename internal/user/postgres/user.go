package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/fintech-enterprise/expense-tracker/internal"
	"github.com/fintech-enterprise/expense-tracker/internal/user"
)

// UserRepository implements user.Repository using GORM. It also serves the
// membership and existence contracts the department and expense packages
// consume.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *user.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id int64) (*user.User, error) {
	var u user.User
	if err := r.db.Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(username string) (*user.User, error) {
	var u user.User
	if err := r.db.Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetAll() ([]*user.User, error) {
	var users []*user.User
	err := r.db.Order("username ASC").Find(&users).Error
	return users, err
}

// Update writes the mutable columns only; the username and password hash
// change through dedicated paths, never through a round-tripped row.
func (r *UserRepository) Update(u *user.User) error {
	res := r.db.Model(&user.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]interface{}{
			"role":          u.Role,
			"department_id": u.DepartmentID,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(id int64) error {
	return r.db.Delete(&user.User{}, id).Error
}

// Exists satisfies the reviewer lookup of the approval workflow.
func (r *UserRepository) Exists(id int64) (bool, error) {
	var count int64
	err := r.db.Model(&user.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// AssignDepartment re-points a user's department reference; nil clears it.
func (r *UserRepository) AssignDepartment(userID int64, departmentID *int64) error {
	res := r.db.Model(&user.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"department_id": departmentID,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) GetDepartmentID(userID int64) (*int64, error) {
	u, err := r.GetByID(userID)
	if err != nil {
		return nil, err
	}
	return u.DepartmentID, nil
}
