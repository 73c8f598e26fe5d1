package product

import (
	"time"

	"github.com/frahmantamala/catalog-management/internal/core/datamodel/category"
)

type Product struct {
	ID          int64               `gorm:"primaryKey"`
	Name        string              `gorm:"column:name;not null"`
	Description string              `gorm:"column:description;type:text"`
	Price       float64             `gorm:"column:price;not null"`
	ImgURL      string              `gorm:"column:img_url"`
	Date        time.Time           `gorm:"column:date;not null"`
	Categories  []category.Category `gorm:"many2many:tb_product_category;joinForeignKey:product_id;joinReferences:category_id"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string {
	return "tb_product"
}
