package model

import "github.com/shopspring/decimal"

// BudgetLimits maps a category to its spending limit.
type BudgetLimits map[Category]decimal.Decimal

// Alert reports a category whose total exceeded its limit.
type Alert struct {
	Category   Category        `json:"category"`
	Limit      decimal.Decimal `json:"limit"`
	Total      decimal.Decimal `json:"total"`
	ExceededBy decimal.Decimal `json:"exceeded_by"`
}

// BudgetUsage holds spend against limit for one budgeted category.
type BudgetUsage struct {
	Category    Category        `json:"category"`
	Limit       decimal.Decimal `json:"limit"`
	Spent       decimal.Decimal `json:"spent"`
	UsedPercent float64         `json:"used_percent"`
	Exceeded    bool            `json:"exceeded"`
}
