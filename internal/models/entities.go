package models

import "time"

// Barn is a periodic carrot distribution campaign.
type Barn struct {
	ID                int64      `gorm:"primaryKey" json:"id"`
	Name              string     `gorm:"size:50;not null" json:"name" validate:"required,max=50"`
	StartPeriode      *time.Time `json:"startPeriode"`
	EndPeriode        *time.Time `json:"endPeriode"`
	Owner             string     `gorm:"not null" json:"owner" validate:"required"`
	CarrotPerEmployee int        `json:"carrotPerEmployee"`
	TotalCarrot       int        `json:"totalCarrot"`
	Status            int        `json:"status"`
	IsReleased        bool       `json:"isReleased"`
	Audit             `gorm:"embedded"`
}

// BarnSetting is a carrot allotment rule attached to a barn and optionally a reward.
type BarnSetting struct {
	ID          int64      `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"size:50;not null" json:"name" validate:"required,max=50"`
	Description string     `gorm:"type:text" json:"description"`
	Carrot      *int       `gorm:"not null" json:"carrot" validate:"required"`
	Date        *time.Time `json:"date"`
	IsReleased  int        `json:"isReleased"`
	BarnID      *int64     `json:"barnId"`
	RewardID    *int64     `json:"rewardId"`
	Audit       `gorm:"embedded"`
}

// Bazaar is a time-boxed marketplace where carrots are exchanged for items.
type Bazaar struct {
	ID           int64      `gorm:"primaryKey" json:"id"`
	BazarName    string     `gorm:"size:50;not null" json:"bazarName" validate:"required,max=50"`
	StartPeriode *time.Time `gorm:"not null" json:"startPeriode" validate:"required"`
	EndPeriode   *time.Time `gorm:"not null" json:"endPeriode" validate:"required"`
	Description  string     `gorm:"type:text" json:"description"`
	Status       int        `json:"status"`
	Audit        `gorm:"embedded"`
}

// BazaarItem is an item offered in a bazaar.
type BazaarItem struct {
	ID                      int64   `gorm:"primaryKey" json:"id"`
	Name                    string  `gorm:"not null" json:"name" validate:"required"`
	Description             string  `gorm:"type:text" json:"description"`
	Picture                 string  `json:"picture"`
	ExchangeRate            float64 `json:"exchangeRate"`
	TotalItem               int     `json:"totalItem"`
	AutoApproveTransactions int     `json:"autoApproveTransactions"`
	ItemOnSale              int     `json:"itemOnSale"`
	BazaarID                int64   `gorm:"not null;index" json:"bazaarId" validate:"required"`
	Audit                   `gorm:"embedded"`
}

// RewardStatus is the lifecycle state of a reward rule.
type RewardStatus string

const (
	RewardOpen  RewardStatus = "OPEN"
	RewardClose RewardStatus = "CLOSE"
)

// Reward defines how many carrots an event or achievement grants.
type Reward struct {
	ID                int64        `gorm:"primaryKey" json:"id"`
	TypeName          string       `gorm:"size:50;not null" json:"typeName" validate:"required,max=50"`
	SharingLevel      *int         `gorm:"not null" json:"sharingLevel" validate:"required"`
	Carrot            *int         `gorm:"not null" json:"carrot" validate:"required"`
	Status            RewardStatus `gorm:"size:10" json:"status" validate:"omitempty,oneof=OPEN CLOSE"`
	RewardTypeName    string       `json:"rewardTypeName"`
	Type              string       `gorm:"size:25" json:"type" validate:"max=25"`
	Event             string       `gorm:"size:25" json:"event" validate:"max=25"`
	StatusCloseReason string       `gorm:"size:25" json:"statusCloseReason" validate:"max=25"`
	MaxClaim          int          `json:"maxClaim"`
	ExpiredDate       *time.Time   `json:"expiredDate"`
	Audit             `gorm:"embedded"`
}

// ShareType is a named way of sharing carrots between employees.
type ShareType struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	SharingType string `gorm:"size:50;uniqueIndex;not null" json:"sharingType" validate:"required,max=50"`
	Carrot      *int   `gorm:"not null" json:"carrot" validate:"required"`
	Audit       `gorm:"embedded"`
}

// SharingLevel maps an employee grade to the sharing level it may use.
type SharingLevel struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	Grade        string `gorm:"size:50;not null" json:"grade" validate:"required,max=50"`
	SharingLevel *int   `gorm:"column:sharing_level;not null" json:"sharingLevel" validate:"required"`
	Audit        `gorm:"embedded"`
}

// Transaction types.
const (
	TransactionReward = "reward"
	TransactionShared = "shared"
	TransactionBazaar = "bazaar"
)

// Transaction records a carrot movement.
type Transaction struct {
	ID              int64      `gorm:"primaryKey" json:"id"`
	Type            string     `gorm:"size:10;not null" json:"type" validate:"required,oneof=reward shared bazaar"`
	ToFrom          string     `gorm:"not null" json:"toFrom" validate:"required"`
	Description     string     `gorm:"type:text" json:"description"`
	Carrot          *int       `gorm:"not null" json:"carrot" validate:"required"`
	TransactionDate *time.Time `json:"transactionDate"`
	Status          int        `json:"status"`
	UserID          *int64     `gorm:"index" json:"userId"`
	BazaarID        *int64     `json:"bazaarId"`
	RewardID        *int64     `json:"rewardId"`
	Audit           `gorm:"embedded"`
}

// AllModels lists every table managed by AutoMigrate.
func AllModels() []any {
	return []any{
		&Role{},
		&User{},
		&Barn{},
		&BarnSetting{},
		&Bazaar{},
		&BazaarItem{},
		&Reward{},
		&ShareType{},
		&SharingLevel{},
		&Transaction{},
	}
}
