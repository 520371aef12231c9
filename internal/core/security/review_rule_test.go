package security

import (
	"testing"
)

func TestCompileReviewRule_Empty(t *testing.T) {
	rule, err := CompileReviewRule("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rule != nil {
		t.Fatal("empty expression should yield a nil rule")
	}
	if rule.RequiresReview(ReviewInput{TotalQuantity: 1000}) {
		t.Error("nil rule should never require review")
	}
	if rule.Source() != "" {
		t.Error("nil rule source should be empty")
	}
}

func TestCompileReviewRule_Invalid(t *testing.T) {
	if _, err := CompileReviewRule(`totalQuantity >`); err == nil {
		t.Error("syntax error should fail compilation")
	}
	if _, err := CompileReviewRule(`totalQuantity + 1`); err == nil {
		t.Error("non-boolean expression should fail compilation")
	}
	if _, err := CompileReviewRule(`unknownVar > 1`); err == nil {
		t.Error("unknown variable should fail compilation")
	}
}

func TestReviewRule_Evaluation(t *testing.T) {
	rule, err := CompileReviewRule(`movementType == "Saída" && totalQuantity > 120`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	tests := []struct {
		name string
		in   ReviewInput
		want bool
	}{
		{
			"large outgoing transfer",
			ReviewInput{MovementType: "Saída", TotalQuantity: 121},
			true,
		},
		{
			"small outgoing transfer",
			ReviewInput{MovementType: "Saída", TotalQuantity: 120},
			false,
		},
		{
			"large incoming transfer",
			ReviewInput{MovementType: "Entrada", TotalQuantity: 500},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rule.RequiresReview(tt.in); got != tt.want {
				t.Errorf("RequiresReview(%+v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestReviewRule_AllVariables(t *testing.T) {
	rule, err := CompileReviewRule(`requesterRole == "Operador" || fromQuinta == "Quinta do Bomfim" || toQuinta == "Consumo"`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	if !rule.RequiresReview(ReviewInput{RequesterRole: "Operador"}) {
		t.Error("requesterRole should be bound")
	}
	if !rule.RequiresReview(ReviewInput{FromQuinta: "Quinta do Bomfim"}) {
		t.Error("fromQuinta should be bound")
	}
	if !rule.RequiresReview(ReviewInput{ToQuinta: "Consumo"}) {
		t.Error("toQuinta should be bound")
	}
	if rule.RequiresReview(ReviewInput{RequesterRole: "Supervisor"}) {
		t.Error("no clause matches, review not required")
	}

	if rule.Source() == "" {
		t.Error("source should round-trip")
	}
}
