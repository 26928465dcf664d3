package venue

import (
	"context"
	"errors"
	"testing"
)

func TestInspectorRequiresLiveConnection(t *testing.T) {
	term := &fakeTerminal{connectErrs: []error{
		errors.New("refused"), errors.New("refused"), errors.New("refused"),
		errors.New("refused"), errors.New("refused"), errors.New("refused"),
	}}
	insp := NewInspector(NewConnection(term, testParams()))

	if _, err := insp.AccountSnapshot(context.Background()); !errors.Is(err, ErrConnectionUnavailable) {
		t.Errorf("AccountSnapshot() error = %v, want ErrConnectionUnavailable", err)
	}
	if _, err := insp.SymbolSpec(context.Background(), "EURUSD"); !errors.Is(err, ErrConnectionUnavailable) {
		t.Errorf("SymbolSpec() error = %v, want ErrConnectionUnavailable", err)
	}
}

func TestInspectorQueries(t *testing.T) {
	term := &fakeTerminal{}
	conn := NewConnection(term, testParams())
	if err := conn.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	insp := NewInspector(conn)

	if _, err := insp.AccountSnapshot(context.Background()); err != nil {
		t.Errorf("AccountSnapshot() error = %v", err)
	}
	spec, err := insp.SymbolSpec(context.Background(), "EURUSD")
	if err != nil {
		t.Fatalf("SymbolSpec() error = %v", err)
	}
	if spec.Symbol != "EURUSD" {
		t.Errorf("spec symbol = %q, want EURUSD", spec.Symbol)
	}
}
