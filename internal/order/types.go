package order

// DeliveryOption is where the courier hands the package over.
type DeliveryOption string

const (
	DeliveryHome   DeliveryOption = "home"
	DeliveryOffice DeliveryOption = "office"
)

// Valid reports whether the option is one of the two enumerated values.
func (d DeliveryOption) Valid() bool {
	return d == DeliveryHome || d == DeliveryOffice
}

// Submission is the payload for POST /api/submit-order and, token
// guaranteed, for the ingest endpoint. Field names are the wire names the
// landing page has always sent.
type Submission struct {
	FullName        string         `json:"fullName" validate:"required,trimmedmin2"`
	Phone           string         `json:"phone" validate:"required,dzphone"`
	WilayaID        int            `json:"wilayaId,omitempty"`
	WilayaNameAr    string         `json:"wilayaNameAr" validate:"required,trimmedmin2"`
	BaladiyaNameAr  string         `json:"baladiyaNameAr" validate:"required,trimmedmin2"`
	SelectedWatchID string         `json:"selectedWatchId" validate:"required"`
	DeliveryOption  DeliveryOption `json:"deliveryOption" validate:"required,oneof=home office"`
	Total           int            `json:"total" validate:"required,gt=0"`
	Notes           string         `json:"notes,omitempty"`
	ClientRequestID string         `json:"clientRequestId,omitempty"`
}

// SubmitResponse is what both the proxy and the ingest service answer
// with. Success/failure travels in the body; the ingest layer always
// speaks HTTP 200.
type SubmitResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message,omitempty"`
	Error           string `json:"error,omitempty"`
	Row             int    `json:"row,omitempty"`
	Duplicate       bool   `json:"duplicate,omitempty"`
	ClientRequestID string `json:"clientRequestId,omitempty"`
}
