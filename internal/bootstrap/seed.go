package bootstrap

import (
	"anoa.com/alumnihub/internal/entity"
	"anoa.com/alumnihub/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	defaultDepartments = []string{"IPA", "IPS", "Bahasa"}
	defaultDormitories = []string{"Asrama Putra 1", "Asrama Putra 2", "Asrama Putri 1", "Asrama Putri 2"}
	defaultChatRooms   = []string{"General", "Reuni", "Karir", "Info Beasiswa"}
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Department{},
		&entity.Dormitory{},
		&entity.User{},
		&entity.UserDetail{},
		&entity.Friendship{},
		&entity.Task{},
		&entity.UserTask{},
		&entity.ChatRoom{},
		&entity.Message{},
	)
}

// Seed inserts the static reference rows. Existing rows are left alone so it
// is safe on every boot.
func Seed(db *gorm.DB) error {
	if err := SeedDepartments(db); err != nil {
		return err
	}
	if err := SeedDormitories(db); err != nil {
		return err
	}
	return SeedChatRooms(db)
}

func SeedDepartments(db *gorm.DB) error {
	rows := make([]entity.Department, 0, len(defaultDepartments))
	for _, d := range defaultDepartments {
		rows = append(rows, entity.Department{Description: d})
	}
	return insertMissing(db, "departments", &rows)
}

func SeedDormitories(db *gorm.DB) error {
	rows := make([]entity.Dormitory, 0, len(defaultDormitories))
	for _, d := range defaultDormitories {
		rows = append(rows, entity.Dormitory{Description: d})
	}
	return insertMissing(db, "dormitories", &rows)
}

func SeedChatRooms(db *gorm.DB) error {
	rows := make([]entity.ChatRoom, 0, len(defaultChatRooms))
	for _, name := range defaultChatRooms {
		rows = append(rows, entity.ChatRoom{Name: name})
	}
	return insertMissing(db, "chat rooms", &rows)
}

func insertMissing(db *gorm.DB, what string, rows interface{}) error {
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(rows)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		logger.WithField("rows", res.RowsAffected).Infof("seeded %s", what)
	}
	return nil
}
