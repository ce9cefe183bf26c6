package validation

import (
	"strings"
	"testing"
)

type sampleRequest struct {
	Name     string `validate:"required,max=10"`
	Quantity int    `validate:"gte=1"`
}

func TestStructValid(t *testing.T) {
	if errs := Struct(sampleRequest{Name: "ok", Quantity: 1}); errs != nil {
		t.Fatalf("errs = %v, want nil", errs)
	}
}

func TestStructCollectsAllFailures(t *testing.T) {
	errs := Struct(sampleRequest{})
	if len(errs) != 2 {
		t.Fatalf("len(errs) = %d, want 2", len(errs))
	}

	msg := Message(errs)
	if !strings.Contains(msg, "Name") || !strings.Contains(msg, "Quantity") {
		t.Fatalf("message %q does not name both fields", msg)
	}
	if !strings.Contains(msg, "gte=1") {
		t.Fatalf("message %q does not carry the constraint param", msg)
	}
}
