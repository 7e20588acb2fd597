package domain

import (
	"time"

	"cloud.google.com/go/civil"
)

type User struct {
	ID    int64  `db:"id" json:"id"`
	Email string `db:"email" json:"email"`
	Name  string `db:"name" json:"name"`
	Hash  string `db:"password_hash" json:"-"`
}

type Home struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	CreatedAt string `db:"created_at" json:"createdAt"`
}

type Category struct {
	ID     int64  `db:"id" json:"id"`
	HomeID int64  `db:"home_id" json:"homeId"`
	Name   string `db:"name" json:"name"`
}

type Subcategory struct {
	ID         int64  `db:"id" json:"id"`
	CategoryID int64  `db:"category_id" json:"categoryId"`
	HomeID     int64  `db:"home_id" json:"homeId"`
	Name       string `db:"name" json:"name"`
}

// Product is a catalog entry. StockCount is filled by the query that reads
// the product and is never persisted.
type Product struct {
	ID              int64    `db:"id"`
	HomeID          int64    `db:"home_id"`
	SubcategoryID   int64    `db:"subcategory_id"`
	SubcategoryName string   `db:"subcategory_name"`
	Name            string   `db:"name"`
	Picture         string   `db:"picture"`
	Mass            *float64 `db:"mass"`   // grams
	Liquid          *float64 `db:"liquid"` // millilitres
	StockCount      int      `db:"stock_count"`
}

// Batch is one physical unit of a product.
type Batch struct {
	ID             int64
	ProductID      int64
	HomeID         int64
	ExpirationDate *civil.Date
	ProductName    string
	ProductPicture string
}

type Cart struct {
	ID     int64 `db:"id"`
	HomeID int64 `db:"home_id"`
}

type CartLine struct {
	ID              int64  `db:"id" json:"id"`
	ProductID       int64  `db:"product_id" json:"productId"`
	ProductName     string `db:"product_name" json:"productName"`
	ProductPicture  string `db:"product_picture" json:"productPicture"`
	Quantity        int    `db:"quantity" json:"quantity"`
	Checked         bool   `db:"checked" json:"checked"`
	SubcategoryID   int64  `db:"subcategory_id" json:"subcategoryId"`
	SubcategoryName string `db:"subcategory_name" json:"subcategoryName"`
}

type Permission struct {
	ID     int64          `db:"id" json:"id"`
	HomeID int64          `db:"home_id" json:"homeId"`
	UserID int64          `db:"user_id" json:"userId"`
	Type   PermissionType `db:"type" json:"type"`
}

type InviteLink struct {
	ID        int64          `json:"id"`
	Code      string         `json:"code"`
	HomeID    int64          `json:"homeId"`
	Type      PermissionType `json:"type"`
	ExpiresAt time.Time      `json:"expiresAt"`
}
