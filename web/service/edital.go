package service

import (
	"context"
	"errors"
	"io"

	"github.com/editalgen/editalgen/database"
	"github.com/editalgen/editalgen/database/model"
	"github.com/editalgen/editalgen/logger"
	"github.com/editalgen/editalgen/placeholder"
	"github.com/editalgen/editalgen/storage"
	"github.com/editalgen/editalgen/web/entity"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrForbidden = errors.New("permission denied")
	ErrConfig    = errors.New("configuration error")
)

// FileCleanup reports the outcome of removing generated documents after a
// record change. Failures never undo the record change.
type FileCleanup struct {
	Removed []string
	Missing []string
	Failed  []string
	NoFile  bool
}

func (f *FileCleanup) remove(ctx context.Context, store storage.Store, name string) {
	exists, err := store.Exists(ctx, name)
	if err == nil && !exists {
		f.Missing = append(f.Missing, name)
		return
	}
	if err == nil {
		err = store.Remove(ctx, name)
	}
	if err != nil {
		logger.Warningf("remove generated file %s failed: %v", name, err)
		f.Failed = append(f.Failed, name)
		return
	}
	f.Removed = append(f.Removed, name)
}

type EditalService struct {
	Generator      *DocumentGenerator
	settingService SettingService
}

func NewEditalService(generator *DocumentGenerator) *EditalService {
	return &EditalService{Generator: generator}
}

// CanAccess reports whether user may view, edit, download or delete e.
func CanAccess(user *model.User, e *model.Edital) bool {
	return user != nil && (e.CreatorId == user.Id || user.IsAdmin())
}

func (s *EditalService) find(id int) (*model.Edital, error) {
	e := &model.Edital{}
	err := database.GetDB().Preload("Creator").First(e, id).Error
	if database.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Get loads an edital the user is allowed to access.
func (s *EditalService) Get(user *model.User, id int) (*model.Edital, error) {
	e, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if !CanAccess(user, e) {
		return nil, ErrForbidden
	}
	return e, nil
}

func (s *EditalService) GetByFilename(user *model.User, filename string) (*model.Edital, error) {
	if filename == "" {
		return nil, ErrNotFound
	}
	e := &model.Edital{}
	err := database.GetDB().Where("generated_filename = ?", filename).First(e).Error
	if database.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !CanAccess(user, e) {
		return nil, ErrForbidden
	}
	return e, nil
}

// ListByUser returns the user's editais, newest first.
func (s *EditalService) ListByUser(userId int) ([]model.Edital, error) {
	var editais []model.Edital
	err := database.GetDB().
		Where("creator_id = ?", userId).
		Order("data_criacao DESC, id DESC").
		Find(&editais).Error
	return editais, err
}

// ListAll returns every edital with its creator, newest first.
func (s *EditalService) ListAll() ([]model.Edital, error) {
	var editais []model.Edital
	err := database.GetDB().
		Preload("Creator").
		Order("data_criacao DESC, id DESC").
		Find(&editais).Error
	return editais, err
}

func (s *EditalService) Count() (int64, error) {
	var n int64
	err := database.GetDB().Model(model.Edital{}).Count(&n).Error
	return n, err
}

// Create stores a new edital and its document. The record and the file
// either both exist afterwards or neither does.
func (s *EditalService) Create(ctx context.Context, user *model.User, form *entity.EditalForm) (*model.Edital, error) {
	e := &model.Edital{CreatorId: user.Id}
	form.Apply(e)
	signer := s.settingService.GetSigner(user.Username)

	var written string
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(e).Error; err != nil {
			return err
		}
		name, err := s.Generator.Generate(ctx, e, signer, false)
		if err != nil {
			return err
		}
		written = name
		e.GeneratedFilename = name
		return tx.Model(e).Update("generated_filename", name).Error
	})
	if err != nil {
		s.discard(ctx, written)
		return nil, err
	}
	return e, nil
}

// Update applies the form, regenerates the document and then removes the
// previous file. The returned cleanup describes that removal.
func (s *EditalService) Update(ctx context.Context, user *model.User, id int, form *entity.EditalForm) (*model.Edital, *FileCleanup, error) {
	e, err := s.Get(user, id)
	if err != nil {
		return nil, nil, err
	}
	old := e.GeneratedFilename
	form.Apply(e)
	e.Creator = nil
	signer := s.settingService.GetSigner(user.Username)

	var written string
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(e).Error; err != nil {
			return err
		}
		name, err := s.Generator.Generate(ctx, e, signer, true)
		if err != nil {
			return err
		}
		written = name
		e.GeneratedFilename = name
		return tx.Model(e).Update("generated_filename", name).Error
	})
	if err != nil {
		s.discard(ctx, written)
		return nil, nil, err
	}

	cleanup := &FileCleanup{}
	if old == "" {
		cleanup.NoFile = true
	} else if old != e.GeneratedFilename {
		cleanup.remove(ctx, s.Generator.Store, old)
	}
	return e, cleanup, nil
}

// Delete removes the record and then, best effort, its document.
func (s *EditalService) Delete(ctx context.Context, user *model.User, id int) (*model.Edital, *FileCleanup, error) {
	e, err := s.Get(user, id)
	if err != nil {
		return nil, nil, err
	}
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		return tx.Delete(&model.Edital{}, e.Id).Error
	})
	if err != nil {
		return nil, nil, err
	}

	cleanup := &FileCleanup{}
	if e.GeneratedFilename == "" {
		cleanup.NoFile = true
	} else {
		cleanup.remove(ctx, s.Generator.Store, e.GeneratedFilename)
	}
	return e, cleanup, nil
}

func (s *EditalService) discard(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := s.Generator.Store.Remove(ctx, name); err != nil {
		logger.Warningf("discard %s after failed save: %v", name, err)
	}
}

// OpenDocument returns the stored document of an edital the user may
// access, looked up by its file name.
func (s *EditalService) OpenDocument(ctx context.Context, user *model.User, filename string) (io.ReadCloser, int64, error) {
	if err := storage.CheckName(filename); err != nil {
		return nil, 0, ErrNotFound
	}
	if _, err := s.GetByFilename(user, filename); err != nil {
		return nil, 0, err
	}
	return s.Generator.Store.Open(ctx, filename)
}

// Placeholders previews the token values of an edital without touching
// the template. Dictionary problems are returned along with the values.
func (s *EditalService) Placeholders(user *model.User, id int) (map[string]string, error) {
	e, err := s.Get(user, id)
	if err != nil {
		return nil, err
	}
	d, dictErr := s.Generator.Dictionary()
	return placeholder.Resolve(e, s.settingService.GetSigner(user.Username), d), dictErr
}

// RenderTo regenerates an edital without storing it, signed by its
// creator.
func (s *EditalService) RenderTo(id int, w io.Writer) error {
	e, err := s.find(id)
	if err != nil {
		return err
	}
	name := ""
	if e.Creator != nil {
		name = e.Creator.Username
	}
	data, err := s.Generator.Render(e, s.settingService.GetSigner(name))
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReferencedFiles returns the set of file names held by some edital.
func (s *EditalService) ReferencedFiles() (map[string]bool, error) {
	var names []string
	err := database.GetDB().Model(model.Edital{}).
		Where("generated_filename <> ''").
		Pluck("generated_filename", &names).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out, nil
}
