package db

import "gorm.io/gorm"

// DefaultCategories 是新库的初始分类。
var DefaultCategories = []string{"C#", "ASP.NET Core", "SQL Server", "Java"}

// DefaultAuthors 是新库的初始作者。
var DefaultAuthors = []Author{
	{Name: "Pranaya Rout", Email: "Pranaya.Rout@example.com"},
	{Name: "Rakesh Kumar", Email: "Rakesh.Kumar@example.com"},
	{Name: "Hina Sharma", Email: "Hina.Sharma@example.com"},
}

// Seed inserts the starter categories and authors when their tables are empty.
// It is safe to call on every start.
func Seed(gdb *gorm.DB) error {
	return gdb.Transaction(func(tx *gorm.DB) error {
		var categories int64
		if err := tx.Model(&Category{}).Count(&categories).Error; err != nil {
			return err
		}
		if categories == 0 {
			rows := make([]Category, 0, len(DefaultCategories))
			for _, name := range DefaultCategories {
				rows = append(rows, Category{Name: name})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}

		var authors int64
		if err := tx.Model(&Author{}).Count(&authors).Error; err != nil {
			return err
		}
		if authors == 0 {
			rows := make([]Author, len(DefaultAuthors))
			copy(rows, DefaultAuthors)
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
