package wire

// Request bodies of the mutating endpoints. Tags are checked by the HTTP
// layer with go-playground/validator before the values reach a service.

type CreateIncomeRequest struct {
	Category    string `json:"category" validate:"required,max=100"`
	Description string `json:"description" validate:"max=200"`
	Amount      Amount `json:"amount"`
	Date        string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	IsTithe     bool   `json:"is_tithe"`
	IsOffering  bool   `json:"is_offering"`
}

type CreateIncomeResponse struct {
	Success        bool   `json:"success"`
	ID             int64  `json:"id"`
	LocalAmount    Amount `json:"local_amount"`
	DistrictAmount Amount `json:"district_amount"`
}

type TitheRequest struct {
	MemberName string `json:"memberName" validate:"required,max=100"`
	MemberID   string `json:"memberId" validate:"max=100"`
	Month      *int   `json:"month" validate:"required,min=0,max=11"`
	Week       int    `json:"week" validate:"required,min=1,max=5"`
	Amount     Amount `json:"amount"`
}

// OfferingRequest addresses the general offering when MemberName is empty.
type OfferingRequest struct {
	MemberName string `json:"memberName" validate:"max=100"`
	MemberID   string `json:"memberId" validate:"max=100"`
	Month      *int   `json:"month" validate:"required,min=0,max=11"`
	Week       int    `json:"week" validate:"required,min=1,max=5"`
	Amount     Amount `json:"amount"`
}

// LedgerResponse answers tithe and offering posts.
type LedgerResponse struct {
	Success        bool   `json:"success"`
	ID             int64  `json:"id"`
	IncomeID       int64  `json:"income_id"`
	Total          Amount `json:"total"`
	LocalAmount    Amount `json:"local_amount"`
	DistrictAmount Amount `json:"district_amount"`
}

type CreateExpenseRequest struct {
	Category    string `json:"category" validate:"required,max=100"`
	Description string `json:"description" validate:"required,max=200"`
	Amount      Amount `json:"amount"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	ExpenseType string `json:"expense_type" validate:"omitempty,oneof=other district national"`
}

type CreateDistrictExpenseRequest struct {
	Source         string `json:"source" validate:"required,max=100"`
	Description    string `json:"description" validate:"max=200"`
	OriginalAmount Amount `json:"originalAmount"`
	DistrictAmount Amount `json:"districtAmount"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	Status         string `json:"status" validate:"max=20"`
}

type CreateInventoryRequest struct {
	ItemName  string `json:"itemName" validate:"required,max=100"`
	Category  string `json:"category" validate:"required,max=100"`
	Quantity  int    `json:"quantity" validate:"min=0"`
	Condition string `json:"condition" validate:"required,oneof=Excellent Good Fair Poor"`
}

// YearResetRequest archives the current year when Year is zero.
type YearResetRequest struct {
	Year int `json:"year" validate:"omitempty,min=1900,max=9999"`
}

// CreatedResponse answers the simple create endpoints.
type CreatedResponse struct {
	Success bool   `json:"success"`
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse carries per-field problems for validation failures.
type ErrorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}
