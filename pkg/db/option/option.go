package option

import "gorm.io/gorm"

// QueryOption narrows a query built by a repository.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type queryFunc func(db *gorm.DB) *gorm.DB

func (f queryFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

func OrderBy(expr string) QueryOption {
	return queryFunc(func(db *gorm.DB) *gorm.DB { return db.Order(expr) })
}

func Limit(n int) QueryOption {
	return queryFunc(func(db *gorm.DB) *gorm.DB {
		if n <= 0 {
			return db
		}
		return db.Limit(n)
	})
}

func Where(query any, args ...any) QueryOption {
	return queryFunc(func(db *gorm.DB) *gorm.DB { return db.Where(query, args...) })
}

func Preload(assoc string) QueryOption {
	return queryFunc(func(db *gorm.DB) *gorm.DB { return db.Preload(assoc) })
}

// ApplyCursor orders by ascending id, skips rows up to and including
// afterID and fetches limit+1 rows so callers can detect a further page.
func ApplyCursor(afterID int64, limit int) QueryOption {
	return queryFunc(func(db *gorm.DB) *gorm.DB {
		if afterID > 0 {
			db = db.Where("id > ?", afterID)
		}
		db = db.Order("id asc")
		if limit > 0 {
			db = db.Limit(limit + 1)
		}
		return db
	})
}
