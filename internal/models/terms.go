package models

// Enumerações comerciais compartilhadas entre inquiries, proposals e
// supply chain terms.

var PaymentModes = []string{"advance", "credit", "pdc", "advance_pdc", "lc"}

var BusinessConditions = []string{"efs", "gst", "non_gst"}

var QuantityTypes = []string{"kg", "lbs", "bags"}

var Certifications = []string{"GOTS", "RWS", "Global Recycled Standard", "EU Ecolabel"}

// PaymentTerms é o sub-documento de condições de pagamento embutido nas
// inquiries (forma canônica: sempre aninhado, nunca campos soltos).
type PaymentTerms struct {
	PaymentMode        string `json:"paymentMode"`
	Days               int    `json:"days"`
	ShipmentTerms      string `json:"shipmentTerms"`
	BusinessConditions string `json:"businessConditions"`
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// ValidatePaymentTerms aceita campos vazios (opcionais) mas rejeita
// valores fora das enumerações.
func ValidatePaymentTerms(t PaymentTerms) error {
	if t.PaymentMode != "" && !contains(PaymentModes, t.PaymentMode) {
		return NewValidationError("invalid payment mode %q", t.PaymentMode)
	}
	if t.BusinessConditions != "" && !contains(BusinessConditions, t.BusinessConditions) {
		return NewValidationError("invalid business conditions %q", t.BusinessConditions)
	}
	return nil
}

// ValidateQuantityType exige um dos tipos suportados.
func ValidateQuantityType(qt string) error {
	if !contains(QuantityTypes, qt) {
		return NewValidationError("invalid quantity type %q", qt)
	}
	return nil
}

// ValidateCertifications rejeita certificações fora do catálogo.
func ValidateCertifications(list []string) error {
	for _, c := range list {
		if !contains(Certifications, c) {
			return NewValidationError("invalid certification %q", c)
		}
	}
	return nil
}

// ValidatePaymentMode exige modo de pagamento presente e válido.
func ValidatePaymentMode(mode string) error {
	if !contains(PaymentModes, mode) {
		return NewValidationError("invalid payment mode %q", mode)
	}
	return nil
}

// ValidateBusinessConditions exige condição de negócio presente e válida.
func ValidateBusinessConditions(bc string) error {
	if !contains(BusinessConditions, bc) {
		return NewValidationError("invalid business conditions %q", bc)
	}
	return nil
}
