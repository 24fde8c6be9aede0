package model

import "time"

// RealEstate — объект недвижимости пользователя. Поля соответствуют форме
// добавления; данные могут быть дополнены из Rentcast при поиске по адресу.
type RealEstate struct {
	ID            int64     `json:"id"`
	UserID        string    `json:"-"`
	Address       string    `json:"address"`
	Price         float64   `json:"price"`
	Bedrooms      int       `json:"bedrooms"`
	Bathrooms     int       `json:"bathrooms"`
	SquareFootage int       `json:"squareFootage"`
	YearBuilt     int       `json:"yearBuilt"`
	CreatedAt     time.Time `json:"created_at"`
}
