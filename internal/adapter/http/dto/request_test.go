package dto

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/iho/minibank/internal/domain"
	"github.com/iho/minibank/internal/usecase"
)

func TestCreateAccountRequest_ToUseCaseInput(t *testing.T) {
	req := &CreateAccountRequest{OwnerID: "user-1", Type: "savings"}

	got := req.ToUseCaseInput()
	want := usecase.CreateAccountInput{OwnerID: "user-1", Type: "savings"}

	if got != want {
		t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, want)
	}
}

func TestAmountRequest_Money(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    domain.Money
		wantErr error
	}{
		{name: "pence", body: `{"amount_pence": 1250}`, want: 1250},
		{name: "decimal string", body: `{"amount": "12.50"}`, want: 1250},
		{name: "decimal number", body: `{"amount": 3}`, want: 300},
		{name: "both agree", body: `{"amount": "0.99", "amount_pence": 99}`, want: 99},
		{name: "both disagree", body: `{"amount": "1.00", "amount_pence": 99}`, wantErr: domain.ErrInvalidAmount},
		{name: "sub-penny precision", body: `{"amount": "0.001"}`, wantErr: domain.ErrInvalidAmount},
		{name: "missing", body: `{}`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req AmountRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			got, err := req.Money()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Money() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTransferRequest_ToUseCaseInput(t *testing.T) {
	var req TransferRequest
	body := `{"from_account_id":"acc-a","to_account_id":"acc-b","amount":"5.00"}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got, err := req.ToUseCaseInput()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := usecase.TransferInput{FromAccountID: "acc-a", ToAccountID: "acc-b", Amount: 500}
	if got != want {
		t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, want)
	}
}

func TestDepositRequest_ToUseCaseInputRejectsBadAmount(t *testing.T) {
	var req DepositRequest
	if err := json.Unmarshal([]byte(`{"account_id":"acc","amount":"1.234"}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if _, err := req.ToUseCaseInput(); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestUpdateProfileRequest_KeepsAbsentFieldsNil(t *testing.T) {
	var req UpdateProfileRequest
	if err := json.Unmarshal([]byte(`{"first_name":"Ada"}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	in := req.ToUseCaseInput()
	if in.FirstName == nil || *in.FirstName != "Ada" {
		t.Fatalf("expected first name to be set, got %+v", in)
	}
	if in.LastName != nil || in.Password != nil {
		t.Fatalf("expected absent fields to stay nil, got %+v", in)
	}
}
