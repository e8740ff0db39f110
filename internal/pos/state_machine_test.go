package pos

import (
	"errors"
	"testing"
)

func TestValidateForwardEdges(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantErr bool
	}{
		{"verify payment", "pending_payment", "pending", false},
		{"confirm", "pending", "confirmed", false},
		{"start cooking", "confirmed", "preparing", false},
		{"mark ready", "preparing", "ready", false},
		{"complete", "ready", "completed", false},
		{"skip confirm", "pending", "preparing", true},
		{"skip ready", "preparing", "completed", true},
		{"backwards", "ready", "preparing", true},
		{"self loop", "pending", "pending", true},
		{"jump to ready", "pending_payment", "ready", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.from, tt.to)
			if tt.wantErr && err == nil {
				t.Errorf("Validate(%s, %s) = nil, want error", tt.from, tt.to)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate(%s, %s) = %v, want nil", tt.from, tt.to, err)
			}
		})
	}
}

func TestValidateVoidAndCancelFromAnyActive(t *testing.T) {
	active := []string{"pending_payment", "pending", "confirmed", "preparing", "ready"}

	for _, from := range active {
		if err := Validate(from, "voided"); err != nil {
			t.Errorf("Validate(%s, voided) = %v, want nil", from, err)
		}
		if err := Validate(from, "cancelled"); err != nil {
			t.Errorf("Validate(%s, cancelled) = %v, want nil", from, err)
		}
	}
}

func TestValidateTerminalStatesAreFinal(t *testing.T) {
	terminal := []string{"completed", "cancelled", "voided"}
	targets := []string{"pending", "confirmed", "preparing", "ready", "completed", "voided", "cancelled"}

	for _, from := range terminal {
		for _, to := range targets {
			err := Validate(from, to)
			if !errors.Is(err, ErrIllegalTransition) {
				t.Errorf("Validate(%s, %s) = %v, want ErrIllegalTransition", from, to, err)
			}
		}
	}
}

func TestValidateUnknownStatus(t *testing.T) {
	if err := Validate("bogus", "pending"); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("unknown from status: got %v, want ErrIllegalTransition", err)
	}
	if err := Validate("pending", "bogus"); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("unknown to status: got %v, want ErrIllegalTransition", err)
	}
}

func TestValidateReason(t *testing.T) {
	tests := []struct {
		name    string
		to      string
		reason  string
		wantErr bool
	}{
		{"void with reason", "voided", "customer walked out", false},
		{"void without reason", "voided", "", true},
		{"void whitespace reason", "voided", "   ", true},
		{"cancel without reason", "cancelled", "", true},
		{"cancel with reason", "cancelled", "payment_rejected", false},
		{"forward needs no reason", "confirmed", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReason(tt.to, tt.reason)
			if tt.wantErr && !errors.Is(err, ErrReasonRequired) {
				t.Errorf("ValidateReason(%s, %q) = %v, want ErrReasonRequired", tt.to, tt.reason, err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateReason(%s, %q) = %v, want nil", tt.to, tt.reason, err)
			}
		})
	}
}

func TestTriggerFor(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want string
	}{
		{"pending_payment", "pending", TriggerVerifyPayment},
		{"pending_payment", "cancelled", TriggerRejectPayment},
		{"confirmed", "cancelled", TriggerVoid},
		{"preparing", "voided", TriggerVoid},
		{"pending", "confirmed", TriggerConfirm},
		{"confirmed", "preparing", TriggerStartCooking},
		{"preparing", "ready", TriggerMarkReady},
		{"ready", "completed", TriggerComplete},
	}

	for _, tt := range tests {
		if got := TriggerFor(tt.from, tt.to); got != tt.want {
			t.Errorf("TriggerFor(%s, %s) = %q, want %q", tt.from, tt.to, got, tt.want)
		}
	}
}
