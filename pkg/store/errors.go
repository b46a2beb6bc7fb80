package store

// Errors
var (
	ErrDuplicateKey    = &StoreError{"roll number already exists"}
	ErrNotFound        = &StoreError{"record not found"}
	ErrInvalidPosition = &StoreError{"position out of range"}
)

// StoreError represents a record store error
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}
