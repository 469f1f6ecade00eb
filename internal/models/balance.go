package models

// Balance is a user's single running account total in cents. Exactly one
// row exists per username; it is created lazily on the first posted
// transaction and never deleted.
type Balance struct {
	Base
	Username string `gorm:"not null;uniqueIndex" json:"username"`
	Amount   int64  `gorm:"not null;default:0" json:"amount"`
}
