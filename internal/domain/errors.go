package domain

// DomainError represents a domain-specific error
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Custom errors
var (
	ErrProjectNotFound  = NewDomainError("project not found")
	ErrInvalidDate      = NewDomainError("date must be in YYYY-MM-DD format")
	ErrInvalidDateRange = NewDomainError("start date must not be after end date")
	ErrNoTicketSource   = NewDomainError("no ticket source configured")
)
