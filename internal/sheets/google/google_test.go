package google

import (
	"context"
	"testing"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New(context.Background(), ""); err == nil {
		t.Fatal("empty API key should be rejected")
	}
	if _, err := New(context.Background(), "   "); err == nil {
		t.Fatal("blank API key should be rejected")
	}
}

func TestNewFromEnv_RequiresAPIKey(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	if _, err := NewFromEnv(context.Background()); err == nil {
		t.Fatal("missing GOOGLE_API_KEY should be rejected")
	}
}

func TestBatchRead_EmptyRequest(t *testing.T) {
	c := &Client{}
	if _, err := c.BatchRead(context.Background(), "sheet", []string{"A1:B2"}); err == nil {
		t.Fatal("uninitialized service should error")
	}
	got, err := (&Client{svc: nil}).BatchRead(context.Background(), "sheet", nil)
	if err != nil || got != nil {
		t.Fatalf("empty range list: got %v, %v", got, err)
	}
}
