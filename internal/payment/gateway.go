package payment

import (
	"context"
	"fmt"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

// GatewayStatus is the usable subset of a gateway status lookup. A nil
// *GatewayStatus means the gateway had nothing for the order id.
type GatewayStatus struct {
	OrderID           string `json:"order_id"`
	TransactionID     string `json:"transaction_id,omitempty"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status,omitempty"`
	PaymentType       string `json:"payment_type,omitempty"`
	GrossAmount       string `json:"gross_amount,omitempty"`
	TransactionTime   string `json:"transaction_time,omitempty"`
}

// PaymentSession is the result of creating a gateway transaction: the token
// the client redeems plus an optional hosted-page redirect.
type PaymentSession struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

type TransactionRequest struct {
	OrderID       string
	GrossAmount   int64
	CustomerName  string
	CustomerEmail string
	ItemName      string
}

// TransactionError carries the gateway's HTTP-like status and raw detail for
// a failed transaction creation.
type TransactionError struct {
	StatusCode int
	Detail     string
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("gateway transaction failed (status %d): %s", e.StatusCode, e.Detail)
}

// Gateway is the outbound payment-gateway surface used by the reconciler and
// the payment-initiation flow.
type Gateway interface {
	// CheckTransaction looks up the current status for an order id.
	// (nil, nil) means the gateway returned nothing usable.
	CheckTransaction(ctx context.Context, orderID string) (*GatewayStatus, error)
	CreateTransaction(ctx context.Context, req *TransactionRequest) (*PaymentSession, error)
}

type midtransGateway struct {
	core coreapi.Client
	snap snap.Client
}

// NewMidtransGateway builds a Gateway backed by the Midtrans Core and Snap
// APIs, authenticated with the server-side key.
func NewMidtransGateway(serverKey string, production bool) Gateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}

	g := &midtransGateway{}
	g.core.New(serverKey, env)
	g.snap.New(serverKey, env)
	return g
}

func (g *midtransGateway) CheckTransaction(ctx context.Context, orderID string) (*GatewayStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if orderID == "" {
		return nil, fmt.Errorf("check transaction: empty order id")
	}

	res, merr := g.core.CheckTransaction(orderID)
	if merr != nil {
		return nil, fmt.Errorf("check transaction %s: %w", orderID, merr)
	}
	if res == nil || res.TransactionStatus == "" {
		return nil, nil
	}

	return &GatewayStatus{
		OrderID:           res.OrderID,
		TransactionID:     res.TransactionID,
		TransactionStatus: res.TransactionStatus,
		FraudStatus:       res.FraudStatus,
		PaymentType:       res.PaymentType,
		GrossAmount:       res.GrossAmount,
		TransactionTime:   res.TransactionTime,
	}, nil
}

func (g *midtransGateway) CreateTransaction(ctx context.Context, req *TransactionRequest) (*PaymentSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.OrderID == "" {
		return nil, &TransactionError{StatusCode: 400, Detail: "order id is required"}
	}
	if req.GrossAmount <= 0 {
		return nil, &TransactionError{StatusCode: 400, Detail: "gross amount must be positive"}
	}

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: req.GrossAmount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.CustomerName,
			Email: req.CustomerEmail,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    req.OrderID,
				Name:  req.ItemName,
				Price: req.GrossAmount,
				Qty:   1,
			},
		},
	}

	res, merr := g.snap.CreateTransaction(snapReq)
	if merr != nil {
		return nil, &TransactionError{StatusCode: merr.StatusCode, Detail: merr.Message}
	}

	return &PaymentSession{Token: res.Token, RedirectURL: res.RedirectURL}, nil
}
