package service

import (
	"context"
	"errors"

	"github.com/editalgen/editalgen/database"
	"github.com/editalgen/editalgen/database/model"
	"github.com/editalgen/editalgen/storage"

	"gorm.io/gorm"
)

var (
	ErrSelfDelete = errors.New("cannot delete your own account")
	ErrLastAdmin  = errors.New("cannot delete the last administrator")
)

// UserAdminService backs the admin user management pages.
type UserAdminService struct {
	Store storage.Store
}

func NewUserAdminService(store storage.Store) *UserAdminService {
	return &UserAdminService{Store: store}
}

type UserDTO struct {
	Id          int        `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Role        model.Role `json:"role"`
	EditalCount int64      `json:"editalCount"`
}

func toDTO(u *model.User) UserDTO {
	return UserDTO{Id: u.Id, Username: u.Username, Email: u.Email, Role: u.Role}
}

func (s *UserAdminService) ListUsers() ([]UserDTO, error) {
	db := database.GetDB()
	var users []model.User
	if err := db.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}

	var counts []struct {
		CreatorId int
		Total     int64
	}
	if err := db.Model(model.Edital{}).
		Select("creator_id, COUNT(*) as total").
		Group("creator_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	byUser := make(map[int]int64, len(counts))
	for _, c := range counts {
		byUser[c.CreatorId] = c.Total
	}

	out := make([]UserDTO, 0, len(users))
	for i := range users {
		dto := toDTO(&users[i])
		dto.EditalCount = byUser[users[i].Id]
		out = append(out, dto)
	}
	return out, nil
}

func (s *UserAdminService) CountUsers() (int64, error) {
	var n int64
	err := database.GetDB().Model(model.User{}).Count(&n).Error
	return n, err
}

// DeleteResult reports what a user deletion removed.
type DeleteResult struct {
	Username string
	Editais  int
	Cleanup  FileCleanup
}

// DeleteUser removes a user and every edital they created, then their
// generated documents. Admins cannot delete themselves or the last admin.
func (s *UserAdminService) DeleteUser(ctx context.Context, actorId, id int) (*DeleteResult, error) {
	if actorId == id {
		return nil, ErrSelfDelete
	}

	result := &DeleteResult{}
	var files []string
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		var u model.User
		if err := tx.First(&u, id).Error; err != nil {
			if database.IsNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		if u.IsAdmin() {
			var admins int64
			if err := tx.Model(model.User{}).Where("role = ?", model.RoleAdmin).Count(&admins).Error; err != nil {
				return err
			}
			if admins <= 1 {
				return ErrLastAdmin
			}
		}

		var editais []model.Edital
		if err := tx.Where("creator_id = ?", id).Find(&editais).Error; err != nil {
			return err
		}
		for _, e := range editais {
			if e.GeneratedFilename != "" {
				files = append(files, e.GeneratedFilename)
			}
		}
		if err := tx.Where("creator_id = ?", id).Delete(&model.Edital{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&u).Error; err != nil {
			return err
		}
		result.Username = u.Username
		result.Editais = len(editais)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, name := range files {
		result.Cleanup.remove(ctx, s.Store, name)
	}
	return result, nil
}
