package models

// User is the local record of an identity issued by the external provider.
// Subject holds the token "sub" claim and is the lookup key on every request.
type User struct {
	Base
	Subject string `gorm:"uniqueIndex;not null" json:"-"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}
