package repository

import (
	"context"

	"github.com/gojenga/gojenga/internal/store"
	"github.com/gojenga/gojenga/shared/models"
	"github.com/gojenga/gojenga/shared/utils"
)

const passwordField = "password"

type UserRepository struct {
	store store.KeyValueStore
	table string
}

func NewUserRepository(kv store.KeyValueStore, table string) *UserRepository {
	return &UserRepository{store: kv, table: table}
}

// GetByName fetches the full record including the password hash.
func (r *UserRepository) GetByName(ctx context.Context, name string, isTest bool) (*models.User, error) {
	item, err := r.store.Get(ctx, utils.TableName(r.table, isTest), name)
	if err != nil {
		return nil, err
	}
	return &models.User{Name: name, PasswordHash: item[passwordField]}, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User, isTest bool) (store.Outcome, error) {
	return r.store.Put(ctx, utils.TableName(r.table, isTest), store.Item{
		store.KeyField: user.Name,
		passwordField:  user.PasswordHash,
	})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, name, passwordHash string, isTest bool) (store.Outcome, error) {
	return r.store.UpdateField(ctx, utils.TableName(r.table, isTest), name, passwordField, passwordHash)
}

func (r *UserRepository) Delete(ctx context.Context, name string, isTest bool) (store.Outcome, error) {
	return r.store.Delete(ctx, utils.TableName(r.table, isTest), name)
}
