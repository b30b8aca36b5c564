package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ValidationError indica payload malformado ou campo obrigatório ausente,
// detectado antes de qualquer escrita.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError monta um ValidationError formatado.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError indica que a entidade referenciada não existe.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// IllegalTransitionError indica uma mudança de status não permitida a
// partir do estado atual.
type IllegalTransitionError struct {
	Kind string
	From string
	To   string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("%s: illegal transition %q -> %q", e.Kind, e.From, e.To)
}

// InvalidStateError indica um status fora da enumeração da entidade.
type InvalidStateError struct {
	Kind   string
	Status string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: invalid status %q", e.Kind, e.Status)
}

// AuthorizationError indica que o chamador não é parte da entidade.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

// ForbiddenError indica violação de regra de visibilidade.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

// ConflictError indica versão otimista desatualizada ou par único duplicado.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// HTTPStatus mapeia cada tipo de erro do domínio para a família de status
// HTTP correspondente. Erros desconhecidos viram 500.
func HTTPStatus(err error) int {
	var (
		validation *ValidationError
		invalid    *InvalidStateError
		notFound   *NotFoundError
		illegal    *IllegalTransitionError
		authz      *AuthorizationError
		forbidden  *ForbiddenError
		conflict   *ConflictError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &authz), errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &illegal), errors.As(err, &conflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Message string `json:"message"`
}

// WriteError serializa o erro para o cliente. Erros internos nunca expõem
// o texto do store.
func WriteError(w http.ResponseWriter, err error) {
	code := HTTPStatus(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "internal server error"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Message: msg})
}
