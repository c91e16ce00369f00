package webpay

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	pkgerrors "github.com/andesgear/tienda-backend/pkg/errors"
)

func TestClientCreateRequest(t *testing.T) {
	const expectedURL = "http://webpay.test/rswebpaytransaction/api/webpay/v1.2/transactions"
	respBody := `{"token":"e074d38c3","url":"http://webpay.test/webpayserver/initTransaction"}`

	var capturedURL string
	var capturedMethod string
	var capturedHeaders http.Header

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		capturedMethod = req.Method
		capturedHeaders = req.Header.Clone()

		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		var payload map[string]any
		if err := json.Unmarshal(bodyBytes, &payload); err != nil {
			t.Fatalf("unmarshal request body: %v", err)
		}
		if payload["buy_order"] != "ORD-ABC1234XYZ" {
			t.Fatalf("unexpected buy_order %q", payload["buy_order"])
		}
		if payload["amount"] != float64(25990) {
			t.Fatalf("unexpected amount %v", payload["amount"])
		}

		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	httpClient := &http.Client{Transport: rt}
	client, err := NewClient("597055555532", "test-secret", WithBaseURL("http://webpay.test"), WithHTTPClient(httpClient))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	created, err := client.Create(context.Background(), CreateRequest{
		BuyOrder:  "ORD-ABC1234XYZ",
		SessionID: "session-1",
		Amount:    25990,
		ReturnURL: "https://shop.test/payments/webpay/return",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if capturedURL != expectedURL {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if capturedMethod != http.MethodPost {
		t.Fatalf("unexpected method %q", capturedMethod)
	}
	if capturedHeaders.Get("Tbk-Api-Key-Id") != "597055555532" {
		t.Fatalf("commerce code header missing")
	}
	if capturedHeaders.Get("Tbk-Api-Key-Secret") != "test-secret" {
		t.Fatalf("api key header missing")
	}
	if created.Token != "e074d38c3" {
		t.Fatalf("unexpected token %q", created.Token)
	}
	if got := created.RedirectURL(); got != "http://webpay.test/webpayserver/initTransaction?token_ws=e074d38c3" {
		t.Fatalf("unexpected redirect url %q", got)
	}
}

func TestClientCreateRejectsNonPositiveAmount(t *testing.T) {
	client, err := NewClient("597055555532", "test-secret")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.Create(context.Background(), CreateRequest{
		BuyOrder:  "ORD-ABC1234XYZ",
		Amount:    0,
		ReturnURL: "https://shop.test/return",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestClientCommitRequest(t *testing.T) {
	const expectedURL = "http://webpay.test/rswebpaytransaction/api/webpay/v1.2/transactions/tok_123"
	respBody := `{"vci":"TSY","amount":25990,"status":"AUTHORIZED","buy_order":"ORD-ABC1234XYZ","session_id":"session-1","card_detail":{"card_number":"6623"},"accounting_date":"0825","transaction_date":"2026-08-25T14:21:40.000Z","authorization_code":"1213","payment_type_code":"VN","response_code":0,"installments_number":0}`

	var capturedURL string
	var capturedMethod string

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		capturedMethod = req.Method
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	httpClient := &http.Client{Transport: rt}
	client, err := NewClient("597055555532", "test-secret", WithBaseURL("http://webpay.test"), WithHTTPClient(httpClient))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	committed, err := client.Commit(context.Background(), "tok_123")
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if capturedURL != expectedURL {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if capturedMethod != http.MethodPut {
		t.Fatalf("unexpected method %q", capturedMethod)
	}
	if !committed.Approved() {
		t.Fatalf("expected approved commit, got %+v", committed)
	}
	if committed.AuthorizationCode != "1213" {
		t.Fatalf("unexpected authorization code %q", committed.AuthorizationCode)
	}
	if committed.CardDetail.CardNumber != "6623" {
		t.Fatalf("unexpected card number %q", committed.CardDetail.CardNumber)
	}
}

func TestCommitResponseApproved(t *testing.T) {
	cases := []struct {
		name     string
		resp     CommitResponse
		approved bool
	}{
		{"authorized zero code", CommitResponse{Status: "AUTHORIZED", ResponseCode: 0}, true},
		{"authorized nonzero code", CommitResponse{Status: "AUTHORIZED", ResponseCode: -1}, false},
		{"failed zero code", CommitResponse{Status: "FAILED", ResponseCode: 0}, false},
		{"empty", CommitResponse{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.resp.Approved(); got != tc.approved {
				t.Fatalf("expected approved=%v, got %v", tc.approved, got)
			}
		})
	}
}

func TestClientCommitSurfacesGatewayError(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusUnprocessableEntity,
			Body:       io.NopCloser(strings.NewReader(`{"error_message":"Invalid value for parameter: token"}`)),
			Header:     http.Header{},
		}, nil
	})

	httpClient := &http.Client{Transport: rt}
	client, err := NewClient("597055555532", "test-secret", WithBaseURL("http://webpay.test"), WithHTTPClient(httpClient))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.Commit(context.Background(), "expired")
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
