package models

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{NewValidationError("PO required"), http.StatusBadRequest},
		{&InvalidStateError{Kind: "inquiry", Status: "x"}, http.StatusBadRequest},
		{&NotFoundError{Entity: "inquiry", ID: 7}, http.StatusNotFound},
		{&AuthorizationError{Message: "not a party"}, http.StatusForbidden},
		{&ForbiddenError{Message: "competing proposals exist"}, http.StatusForbidden},
		{&IllegalTransitionError{Kind: "contract", From: "running", To: "running"}, http.StatusConflict},
		{&ConflictError{Message: "stale"}, http.StatusConflict},
		{errors.New("driver: bad connection"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.err); got != c.code {
			t.Errorf("%T: esperava %d, veio %d", c.err, c.code, got)
		}
	}
}

func TestWriteErrorMasksInternalText(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("pq: connection refused at 10.0.0.3"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("esperava 500, veio %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["message"] != "internal server error" {
		t.Fatalf("texto interno vazou para o cliente: %q", body["message"])
	}
}

func TestWriteErrorExposesDomainMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, NewValidationError("PO required"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("esperava 400, veio %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["message"] != "PO required" {
		t.Fatalf("mensagem de domínio esperada, veio %q", body["message"])
	}
}
