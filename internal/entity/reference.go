package entity

// Department and Dormitory are seeded reference tables.
type Department struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Description string `gorm:"size:100;uniqueIndex;not null" json:"description"`
}

type Dormitory struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Description string `gorm:"size:100;uniqueIndex;not null" json:"description"`
}
