package model

import "time"

// FamilyPermissions — что член семьи может видеть в кабинете владельца.
type FamilyPermissions struct {
	ViewDocuments bool `json:"viewDocuments"`
	ViewContacts  bool `json:"viewContacts"`
	ViewProfile   bool `json:"viewProfile"`
}

type FamilyMember struct {
	ID             string            `json:"id"`
	UserID         string            `json:"-"`
	Name           string            `json:"name"`
	Relationship   string            `json:"relationship"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone"`
	Address        string            `json:"address"`
	AdditionalInfo string            `json:"additional_info,omitempty"`
	ProfilePicture string            `json:"profile_picture,omitempty"`
	Permissions    FamilyPermissions `json:"permissions"`
	CreatedAt      time.Time         `json:"created_at"`
}
