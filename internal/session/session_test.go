package session

import (
	"errors"
	"testing"
	"time"

	"github.com/matchminds/backend/internal/models"
)

func TestIssueAndParse(t *testing.T) {
	iss := NewIssuer([]byte("secret"))
	in := models.Session{
		CheckID:        "c-1",
		Friend1Name:    "Ana",
		Friend2Name:    "Ben",
		Friend1Cluster: 2,
		Friend2Cluster: 4,
		Percentage:     73.5,
		Category:       models.CategoryCompatible,
	}

	token, err := iss.Issue(in)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	out, err := iss.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if *out != in {
		t.Errorf("Parse = %+v, want %+v", *out, in)
	}
}

func TestParseRejectsTamperedAndExpired(t *testing.T) {
	iss := NewIssuer([]byte("secret"))
	token, err := iss.Issue(models.Session{CheckID: "c-1"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other := NewIssuer([]byte("other"))
	if _, err := other.Parse(token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("wrong key error = %v, want ErrInvalidSession", err)
	}

	late := NewIssuer([]byte("secret"))
	late.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	if _, err := late.Parse(token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("expired error = %v, want ErrInvalidSession", err)
	}

	if _, err := iss.Parse("not-a-token"); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("garbage error = %v, want ErrInvalidSession", err)
	}
}
