package models

import (
	"fmt"
	"time"
)

// Contact represents a single agenda entry.
type Contact struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	FullName  string    `json:"nome_completo" gorm:"column:nome_completo;type:varchar(100);not null"`
	Phone     string    `json:"telefone" gorm:"column:telefone;type:varchar(20);not null"`
	Email     string    `json:"email" gorm:"type:varchar(254);not null"`
	Note      string    `json:"observacao" gorm:"column:observacao;type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table name used by GORM.
func (Contact) TableName() string {
	return "contacts"
}

func (c Contact) String() string {
	return fmt.Sprintf("%s - %s", c.FullName, c.Email)
}

// ContactForm carries the raw values submitted for a contact.
type ContactForm struct {
	FullName string `form:"nome_completo" validate:"required,fullname"`
	Phone    string `form:"telefone" validate:"required,digits,phonelen"`
	Email    string `form:"email" validate:"required,email,institutional"`
	Note     string `form:"observacao"`
}

// FormFromContact pre-fills a form with the stored values of c.
func FormFromContact(c Contact) ContactForm {
	return ContactForm{
		FullName: c.FullName,
		Phone:    c.Phone,
		Email:    c.Email,
		Note:     c.Note,
	}
}

// Apply copies the form values onto c.
func (f ContactForm) Apply(c *Contact) {
	c.FullName = f.FullName
	c.Phone = f.Phone
	c.Email = f.Email
	c.Note = f.Note
}
