package xenditrepo

import "errors"

type CreateInvoiceReq struct {
	ExternalID  string
	Amount      float64
	PayerEmail  string
	Description string
	ExpirySec   int
}

type CreateInvoiceResp struct {
	InvoiceID  string
	InvoiceURL string
	ExpiresAt  string
}

var ErrBadSignature = errors.New("xendit: callback token mismatch")

type Repo interface {
	CreateInvoice(req CreateInvoiceReq) (*CreateInvoiceResp, error)
	VerifyCallbackToken(header string) error
}
