// internal/models/user.go
package models

import (
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	FirstName          string             `json:"first_name" gorm:"size:100;not null"`
	LastName           string             `json:"last_name" gorm:"size:100;not null"`
	Email              string             `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash       string             `json:"-" gorm:"size:255;not null"`
	WalletAddress      string             `json:"wallet_address" gorm:"uniqueIndex;size:64;not null"`
	Role               UserRole           `json:"role" gorm:"type:varchar(20);default:'producer'"`
	Status             UserStatus         `json:"status" gorm:"type:varchar(20);default:'pending'"`
	VerificationStatus VerificationStatus `json:"verification_status" gorm:"type:varchar(20);default:'unverified'"`
	ReputationScore    decimal.Decimal    `json:"reputation_score" gorm:"type:decimal(5,2);default:0"`
	Metadata           JSONB              `json:"metadata,omitempty" gorm:"type:jsonb"`

	// Relationships
	ProducedAssets       []Asset       `json:"produced_assets,omitempty" gorm:"foreignKey:ProducerID"`
	Investments          []Investment  `json:"investments,omitempty" gorm:"foreignKey:InvestorID"`
	SentTransactions     []Transaction `json:"sent_transactions,omitempty" gorm:"foreignKey:FromUserID"`
	ReceivedTransactions []Transaction `json:"received_transactions,omitempty" gorm:"foreignKey:ToUserID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
