package auth

import (
	"testing"
)

func TestTokenRoundTrip(t *testing.T) {
	SetSecret([]byte("segredo-de-teste"))

	token, err := GenerateToken(42, BusinessTypeSupplier)
	if err != nil {
		t.Fatalf("gerando token: %v", err)
	}
	claims, err := ParseAndValidate(token)
	if err != nil {
		t.Fatalf("validando token: %v", err)
	}
	if claims.UserID != 42 || claims.BusinessType != BusinessTypeSupplier {
		t.Fatalf("claims inconsistentes: %+v", claims)
	}
}

func TestParseRejectsTamperedToken(t *testing.T) {
	SetSecret([]byte("segredo-de-teste"))

	token, err := GenerateToken(42, BusinessTypeCustomer)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseAndValidate(token + "x"); err == nil {
		t.Fatal("token adulterado deveria ser rejeitado")
	}
}
