package models

import "time"

// RecurrencePeriod is the cadence of a recurring income or expense.
type RecurrencePeriod string

const (
	PeriodWeekly       RecurrencePeriod = "weekly"
	PeriodMonthly      RecurrencePeriod = "monthly"
	PeriodMonthlyOnDay RecurrencePeriod = "monthly_on_day"
)

// FundsKind discriminates a FundsRef.
type FundsKind string

const (
	FundsCard    FundsKind = "card"
	FundsSavings FundsKind = "savings"
)

// FundsRef is a tagged reference to the instrument a recurring or planned
// item credits or debits: either the card balance or a named savings
// account. Consumers must switch on Kind exhaustively.
type FundsRef struct {
	Kind             FundsKind `yaml:"kind" json:"kind"`
	SavingsAccountID string    `yaml:"savings_account_id,omitempty" json:"savings_account_id,omitempty"`
}

// CardFunds references the card balance.
func CardFunds() FundsRef {
	return FundsRef{Kind: FundsCard}
}

// SavingsFunds references a savings account by ID.
func SavingsFunds(accountID string) FundsRef {
	return FundsRef{Kind: FundsSavings, SavingsAccountID: accountID}
}

// SavingsAccount is a savings instrument with daily-compounded interest.
type SavingsAccount struct {
	ID                 string  `yaml:"id" json:"id"`
	Name               string  `yaml:"name" json:"name"`
	Balance            float64 `yaml:"balance" json:"balance"`
	AnnualInterestRate float64 `yaml:"annual_interest_rate" json:"annual_interest_rate"`
}

// RecurringIncome is a scheduled credit applied during forecasting.
type RecurringIncome struct {
	ID          string           `yaml:"id" json:"id"`
	Name        string           `yaml:"name" json:"name"`
	Amount      float64          `yaml:"amount" json:"amount"`
	Period      RecurrencePeriod `yaml:"period" json:"period"`
	DayOfMonth  int              `yaml:"day_of_month,omitempty" json:"day_of_month,omitempty"`
	DayOfWeek   time.Weekday     `yaml:"day_of_week,omitempty" json:"day_of_week,omitempty"`
	Destination FundsRef         `yaml:"destination" json:"destination"`
}

// RecurringExpense is a scheduled debit applied during forecasting.
type RecurringExpense struct {
	ID         string           `yaml:"id" json:"id"`
	Name       string           `yaml:"name" json:"name"`
	Amount     float64          `yaml:"amount" json:"amount"`
	Period     RecurrencePeriod `yaml:"period" json:"period"`
	DayOfMonth int              `yaml:"day_of_month,omitempty" json:"day_of_month,omitempty"`
	DayOfWeek  time.Weekday     `yaml:"day_of_week,omitempty" json:"day_of_week,omitempty"`
	Source     FundsRef         `yaml:"source" json:"source"`
}

// PlannedExpense is a one-off debit with a fixed calendar date.
type PlannedExpense struct {
	ID     string    `yaml:"id" json:"id"`
	Name   string    `yaml:"name" json:"name"`
	Amount float64   `yaml:"amount" json:"amount"`
	Date   time.Time `yaml:"date" json:"date"`
	Source FundsRef  `yaml:"source" json:"source"`
}

// Budget is a monthly spend limit for one category. Period is "YYYY-MM".
type Budget struct {
	ID          string  `yaml:"id" json:"id"`
	Period      string  `yaml:"period" json:"period"`
	CategoryID  string  `yaml:"category_id" json:"category_id"`
	LimitAmount float64 `yaml:"limit_amount" json:"limit_amount"`
	Currency    string  `yaml:"currency" json:"currency"`
}
