package services

import "net/http"

// Machine-readable error kinds surfaced to the dashboard. Each maps to a
// distinct user-visible message so a timed-out verification is never
// reported as a generic failure.
const (
	CodeInvalidRequest      = "invalid_request"
	CodeProductNotFound     = "product_not_found"
	CodeOutOfStock          = "out_of_stock"
	CodeProviderUnavailable = "payment_provider_unavailable"
	CodeTransactionNotFound = "transaction_not_found"
	CodeInternal            = "internal_error"
)

type ServiceError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func newServiceError(status int, code, message string) *ServiceError {
	return &ServiceError{StatusCode: status, Code: code, Message: message}
}

func errInvalidRequest(msg string) *ServiceError {
	return newServiceError(http.StatusBadRequest, CodeInvalidRequest, msg)
}

func errProductNotFound() *ServiceError {
	return newServiceError(http.StatusNotFound, CodeProductNotFound, "Produto não encontrado")
}

func errOutOfStock() *ServiceError {
	return newServiceError(http.StatusBadRequest, CodeOutOfStock, "Estoque insuficiente")
}

func errProviderUnavailable() *ServiceError {
	return newServiceError(http.StatusBadGateway, CodeProviderUnavailable, "Provedor de pagamento indisponível")
}

func errTransactionNotFound() *ServiceError {
	return newServiceError(http.StatusNotFound, CodeTransactionNotFound, "Transação não encontrada")
}

func errInternal(msg string) *ServiceError {
	return newServiceError(http.StatusInternalServerError, CodeInternal, msg)
}
