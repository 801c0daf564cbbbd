package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base is the gorm handle shared by the contact and profile repositories.
// Contact writes go through contacts.Repository.Write, which wraps
// Transaction so a contact and its work locations land together.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the handle scoped to ctx; nil ctx gives the unscoped one.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Transaction hands fn a Base bound to the transaction. An import commit
// runs its duplicate replacement and batch insert inside one call.
func (b Base) Transaction(ctx context.Context, fn func(tx Base) error) error {
	return b.DB(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Base{db: tx})
	})
}
